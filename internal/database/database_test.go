package database

import (
	"context"
	"testing"

	"coliver/internal/config"
	"coliver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "coliver",
		DBPassword: "secret",
		DBName:     "coliver",
	}
	assert.Equal(t, "host=db port=5432 user=coliver password=secret dbname=coliver sslmode=disable", PostgresDSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg), "sslmode=require")
}

func TestConnect_RejectsDocumentStore(t *testing.T) {
	_, err := Connect(&config.Config{StoreDriver: config.StoreMongo})
	assert.Error(t, err)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	require.NoError(t, configurePool(db, 1, 1, 0))
	require.NoError(t, Migrate(db))

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, db.Migrator().HasColumn(&models.Listing{}, "coord_lat"))
	assert.True(t, db.Migrator().HasColumn(&models.Listing{}, "co_living_details"))
}

func TestMigrate_EmailIsUnique(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	require.NoError(t, configurePool(db, 1, 1, 0))
	require.NoError(t, Migrate(db))

	first := &models.User{FullName: "Ann Lee", Email: "ann@example.com", Password: "x", PhoneNumber: "+380501234567"}
	require.NoError(t, db.Create(first).Error)
	assert.NotEmpty(t, first.ID)

	dup := &models.User{FullName: "Ann Other", Email: "ann@example.com", Password: "y", PhoneNumber: "+380501234568"}
	err = db.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPing(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, Close(db))
}
