package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(logrus.PanicLevel)
}

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite path",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "/tmp/oauth.db"},
			expected: "/tmp/oauth.db",
		},
		{
			name:     "postgres fields",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "oauth", Password: "pw", Name: "oauth", SSLMode: "disable"},
			expected: "host=db user=oauth password=pw dbname=oauth port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", URL: "postgres://oauth:pw@db:5432/oauth"},
			expected: "postgres://oauth:pw@db:5432/oauth",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2", URL: "postgres://oauth:hunter2@db/oauth"}
	assert.NotContains(t, cfg.String(), "hunter2")
	assert.Contains(t, cfg.String(), "[REDACTED]")
}

func TestInitDatabaseSQLite(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db"), MaxRetries: 1})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestInitDatabaseMemoryKeepsTables(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxRetries: 1})
	require.NoError(t, err)

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Model(&probe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
