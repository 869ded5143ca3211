package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN_ForcesParseTime(t *testing.T) {
	dsn, err := normalizeDSN("root:pw@tcp(127.0.0.1:3306)/backoffice?charset=utf8mb4")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "/backoffice")

	_, err = normalizeDSN("root:pw@tcp(127.0.0.1:3306")
	assert.Error(t, err)
}

func TestPingDB_NotConnected(t *testing.T) {
	CloseDB()
	assert.EqualError(t, PingDB(t.Context()), "database not connected")
}
