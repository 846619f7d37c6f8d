package database

import (
	"embed"
	"fmt"

	"tweetledger/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration returns the DDL that introduces version v. Scripts may only add
// tables, columns and indexes; rows written by earlier versions stay valid.
func Migration(v model.SchemaVersion) (string, error) {
	if !v.InLineage() {
		return "", model.ErrUnknownVersion
	}
	data, err := migrationFS.ReadFile(fmt.Sprintf("migrations/v%d.sql", int(v)))
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", v, err)
	}
	return string(data), nil
}
