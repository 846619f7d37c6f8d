package model

import (
	"strconv"
	"strings"
	"time"
)

// SchemaVersion is a deployed schema version tag. Zero means the store was
// never initialized.
type SchemaVersion int

const (
	SchemaNone SchemaVersion = 0
	SchemaV1   SchemaVersion = 1
	SchemaV2   SchemaVersion = 2
	SchemaV4   SchemaVersion = 4
)

// SchemaLineage is the ordered upgrade path. V3 was never shipped.
var SchemaLineage = []SchemaVersion{SchemaV1, SchemaV2, SchemaV4}

// LatestSchema is the terminal version of the lineage.
var LatestSchema = SchemaLineage[len(SchemaLineage)-1]

func (v SchemaVersion) String() string {
	if v == SchemaNone {
		return "none"
	}
	return "V" + strconv.Itoa(int(v))
}

// InLineage reports whether v is a shipped version.
func (v SchemaVersion) InLineage() bool {
	for _, l := range SchemaLineage {
		if l == v {
			return true
		}
	}
	return false
}

// Next returns the lineage step after v, or SchemaNone at the terminal version.
// Next(SchemaNone) is the first shipped version.
func (v SchemaVersion) Next() SchemaVersion {
	if v == SchemaNone {
		return SchemaLineage[0]
	}
	for i, l := range SchemaLineage {
		if l == v && i+1 < len(SchemaLineage) {
			return SchemaLineage[i+1]
		}
	}
	return SchemaNone
}

// StepsTo lists the lineage versions in (v, target].
func (v SchemaVersion) StepsTo(target SchemaVersion) []SchemaVersion {
	var steps []SchemaVersion
	for _, l := range SchemaLineage {
		if l > v && l <= target {
			steps = append(steps, l)
		}
	}
	return steps
}

// ParseSchemaVersion accepts "2", "v2" or "V2".
func ParseSchemaVersion(s string) (SchemaVersion, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "V"), "v")
	n, err := strconv.Atoi(s)
	if err != nil {
		return SchemaNone, ErrUnknownVersion
	}
	v := SchemaVersion(n)
	if !v.InLineage() {
		return SchemaNone, ErrUnknownVersion
	}
	return v, nil
}

// SchemaRecord is one applied initializer.
type SchemaRecord struct {
	Version       SchemaVersion `db:"version" json:"version"`
	InitializedBy string        `db:"initialized_by" json:"initialized_by"`
	InitializedAt time.Time     `db:"initialized_at" json:"initialized_at"`
}

type SchemaStatusResponse struct {
	Current string         `json:"current"`
	Latest  string         `json:"latest"`
	History []SchemaRecord `json:"history"`
}
