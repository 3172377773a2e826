package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PAGE_SIZE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 9, cfg.PageSize)
	assert.Equal(t, 120, cfg.RateLimitRPM)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("PAGE_SIZE", "12")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.Equal(t, 12, cfg.PageSize)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("PAGE_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 9, cfg.PageSize)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")

	path := filepath.Join(t.TempDir(), "clix.yaml")
	data := []byte("port: \"8090\"\nbackend: sqlite\nsqlite_path: portal.db\npage_size: 6\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "portal.db", cfg.SQLitePath)
	assert.Equal(t, 6, cfg.PageSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_EnvWins(t *testing.T) {
	t.Setenv("PORT", "7070")

	path := filepath.Join(t.TempDir(), "clix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"8090\"\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Backend: "memory", PageSize: 9}, false},
		{"firestore missing project", Config{Backend: "firestore", PageSize: 9}, true},
		{"firestore ok", Config{Backend: "firestore", FirestoreProject: "clix-prod", PageSize: 9}, false},
		{"unknown backend", Config{Backend: "mongo", PageSize: 9}, true},
		{"bad page size", Config{Backend: "memory", PageSize: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
