package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestQueryLogger_MapsLevels(t *testing.T) {
	var buf bytes.Buffer
	l := QueryLogger(zerolog.New(&buf))

	l.Log(context.Background(), tracelog.LogLevelInfo, "Query", map[string]any{"sql": "SELECT 1"})
	l.Log(context.Background(), tracelog.LogLevelError, "Query", map[string]any{"err": "boom"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "SELECT 1", first["sql"])
	assert.Equal(t, "pgx", first["component"])
	assert.Equal(t, "error", second["level"])
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", Options{})
	assert.Error(t, err)
}

func TestSeedKeepsSugarAtDefaultID(t *testing.T) {
	// SUGAR_INGREDIENT_ID default 6 harus ada di seed
	assert.Contains(t, seedStatements[1], "(6, 'Sugar', 'g', 5)")
}
