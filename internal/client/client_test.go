package client

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"tienda-services/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBClientMigratesModels(t *testing.T) {
	db, err := InitDBClient(config.Database{
		Driver:       "sqlite",
		URL:          ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, OrderModels...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []string{"products", "categories", "product_categories", "orders", "order_lines"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.False(t, db.Migrator().HasTable("users"))
}

func TestInitDBClientUnknownDriver(t *testing.T) {
	_, err := InitDBClient(config.Database{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.Log{Level: "warn", Format: "json"})

	logger.Info("dropped")
	logger.Warn("kept", "order_id", 7)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, float64(7), record["order_id"])

	buf.Reset()
	NewLogger(&buf, config.Log{Level: "debug", Format: "text"}).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}
