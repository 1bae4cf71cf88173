package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the marketd daemon settings.
type Config struct {
	RPCAddress   string `toml:"RPCAddress"`
	DataDir      string `toml:"DataDir"`
	AdminAddress string `toml:"AdminAddress"`
	Env          string `toml:"Env"`
	LogFile      string `toml:"LogFile"`
	LogMaxSizeMB int    `toml:"LogMaxSizeMB"`
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:   "127.0.0.1:8648",
		DataDir:      "./market-data",
		Env:          "dev",
		LogMaxSizeMB: 100,
	}
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks address shapes and required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required")
	}
	if c.AdminAddress != "" {
		if _, err := c.Admin(); err != nil {
			return err
		}
	}
	return nil
}

// Admin decodes the configured admin principal. The zero address is returned
// when the field is unset; the caller decides whether that is acceptable.
func (c *Config) Admin() ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(c.AdminAddress), "0x")
	if trimmed == "" {
		return addr, nil
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != len(addr) {
		return addr, fmt.Errorf("config: AdminAddress must be a 20-byte hex string")
	}
	copy(addr[:], decoded)
	return addr, nil
}
