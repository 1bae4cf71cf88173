package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8648", cfg.RPCAddress)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config file should be written")

	// A second load reads the written file.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, again.RPCAddress)
}

func TestLoadParsesAdminAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.toml")
	body := `RPCAddress = "127.0.0.1:9000"
DataDir = "/tmp/market"
AdminAddress = "0x0101010101010101010101010101010101010101"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	admin, err := cfg.Admin()
	require.NoError(t, err)
	var want [20]byte
	for i := range want {
		want[i] = 0x01
	}
	require.Equal(t, want, admin)
}

func TestValidateRejectsBadAdmin(t *testing.T) {
	cfg := &Config{RPCAddress: "x", DataDir: "y", AdminAddress: "nothex"}
	require.Error(t, cfg.Validate())
}
