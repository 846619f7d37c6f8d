package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tweetledger/internal/config"
	"tweetledger/internal/model"
	"tweetledger/internal/repository/memory"
	"tweetledger/internal/storage"
)

func testEnv() *Env {
	return &Env{
		Config:  &config.Config{OperatorAccounts: []string{"ops"}},
		Storage: storage.NewMemory(memory.NewStore()),
		Logger:  zap.NewNop(),
	}
}

func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(env)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSchemaUpgrade_Lineage(t *testing.T) {
	env := testEnv()

	out, err := run(t, env, "schema", "upgrade", "1", "--as", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized V1 as ops")

	_, err = run(t, env, "schema", "upgrade", "V2", "--as", "ops")
	require.NoError(t, err)

	out, err = run(t, env, "--format", "json", "schema", "status")
	require.NoError(t, err)

	var st model.SchemaStatusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "V2", st.Current)
	assert.Equal(t, "V4", st.Latest)
	require.Len(t, st.History, 2)
	assert.Equal(t, model.SchemaV2, st.History[1].Version)
}

func TestSchemaUpgrade_Rejections(t *testing.T) {
	env := testEnv()
	_, err := run(t, env, "schema", "upgrade", "1", "--as", "ops")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		kind error
	}{
		{"not an operator", []string{"schema", "upgrade", "2", "--as", "mallory"}, model.ErrUnauthorized},
		{"skips a version", []string{"schema", "upgrade", "4", "--as", "ops"}, model.ErrValidation},
		{"already initialized", []string{"schema", "upgrade", "1", "--as", "ops"}, model.ErrAlreadyInitialized},
		{"never shipped", []string{"schema", "upgrade", "3", "--as", "ops"}, model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, env, tt.args...)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	out, err := run(t, env, "schema", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "current: V1")
}

func TestSchemaUpgrade_RequiresAs(t *testing.T) {
	_, err := run(t, testEnv(), "schema", "upgrade", "2")
	assert.Error(t, err)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := run(t, testEnv(), "--format", "yaml", "schema", "status")
	assert.ErrorContains(t, err, "invalid format")
}

func TestSchema_RefusesProcessLocalStore(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", config.DriverMemory)

	_, err := run(t, nil, "schema", "status")
	assert.ErrorContains(t, err, "STORAGE_DRIVER=memory")
}
