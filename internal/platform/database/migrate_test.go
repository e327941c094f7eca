package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proofwall/internal/platform/config"
)

func TestPgxURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/proofwall", pgxURL("postgres://u:p@db:5432/proofwall"))
	assert.Equal(t, "pgx5://db/proofwall?sslmode=disable", pgxURL("postgresql://db/proofwall?sslmode=disable"))
	assert.Equal(t, "pgx5://db/proofwall", pgxURL("pgx5://db/proofwall"))
}

func TestNewWithoutURL(t *testing.T) {
	pool, err := New(configWithoutURL())
	assert.NoError(t, err)
	assert.Nil(t, pool)
	assert.Error(t, pool.Health(t.Context()))
	assert.NoError(t, pool.Close())
}

func configWithoutURL() config.DatabaseConfig {
	return config.DatabaseConfig{}
}
