package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linguaroom.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tcases := []struct {
		name    string
		content string
		check   func(*testing.T, *Config)
		err     bool
	}{
		{
			name: "full config",
			content: `
room_data_dir = "/var/lib/linguaroom/rooms"
auth_data_dir = "/var/lib/linguaroom/auth"
session_ttl = "720h"
sweep_interval = "10m"
inactivity_threshold = "90m"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/linguaroom/rooms", cfg.RoomDataDir)
				assert.Equal(t, "/var/lib/linguaroom/auth", cfg.AuthDataDir)
				assert.Equal(t, Duration(720*time.Hour), cfg.SessionTTL)
				assert.Equal(t, Duration(10*time.Minute), cfg.SweepInterval)
				assert.Equal(t, Duration(90*time.Minute), cfg.InactivityThreshold)
			},
		},
		{
			name:    "partial config keeps defaults",
			content: `room_data_dir = "rooms"`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "rooms", cfg.RoomDataDir)
				assert.Equal(t, DefaultConfig().AuthDataDir, cfg.AuthDataDir)
				assert.Equal(t, DefaultConfig().SweepInterval, cfg.SweepInterval)
			},
		},
		{
			name:    "invalid duration",
			content: `sweep_interval = "soon"`,
			err:     true,
		},
		{
			name:    "empty data dir",
			content: `room_data_dir = ""`,
			err:     true,
		},
		{
			name:    "malformed toml",
			content: `room_data_dir = `,
			err:     true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, tc.content))
			if tc.err {
				assert.Error(t, err, "expected config to be rejected")
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("LINGUAROOM_TEST_DATA", "/srv/linguaroom")

	cfg, err := Load(writeConfigFile(t, `
room_data_dir = "${LINGUAROOM_TEST_DATA}/rooms"
auth_data_dir = "${LINGUAROOM_TEST_DATA}/auth"
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/linguaroom/rooms", cfg.RoomDataDir)
	assert.Equal(t, "/srv/linguaroom/auth", cfg.AuthDataDir)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.InactivityThreshold = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SessionTTL = Duration(-time.Hour)
	assert.Error(t, cfg.Validate())
}
