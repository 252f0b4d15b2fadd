package database_test

import (
	"path/filepath"
	"testing"

	"pokeusers/internal/config"
	"pokeusers/internal/database"
	"pokeusers/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteAutoMigrates(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "users.db"),
		AutoMigrate: true,
	}

	db, err := database.Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "pokemon_team"))
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "favorite_pokemon"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"}, zerolog.Nop())

	assert.Error(t, err)
}
