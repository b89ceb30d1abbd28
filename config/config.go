package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"donorchain/crypto"
)

type Config struct {
	RPCAddress      string `toml:"RPCAddress"`
	DataDir         string `toml:"DataDir"`
	AdminAddress    string `toml:"AdminAddress"`
	MinimumDonation string `toml:"MinimumDonation"`
	NetworkName     string `toml:"NetworkName"`
	Env             string `toml:"Env"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "donor-local"
	}
	if strings.TrimSpace(cfg.MinimumDonation) == "" {
		cfg.MinimumDonation = "1000000"
	}
}

// Validate checks the semantic constraints the daemon relies on.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.AdminAddress) == "" {
		return fmt.Errorf("config: AdminAddress must be set")
	}
	if _, err := crypto.DecodeAddress(cfg.AdminAddress); err != nil {
		return fmt.Errorf("config: invalid AdminAddress: %w", err)
	}
	min, err := cfg.MinimumDonationAmount()
	if err != nil {
		return err
	}
	if min.Sign() <= 0 {
		return fmt.Errorf("config: MinimumDonation must be positive")
	}
	return nil
}

// Admin returns the parsed administrator address.
func (cfg *Config) Admin() (crypto.Address, error) {
	return crypto.DecodeAddress(cfg.AdminAddress)
}

// MinimumDonationAmount parses the configured floor as a base-unit integer.
func (cfg *Config) MinimumDonationAmount() (*big.Int, error) {
	min, ok := new(big.Int).SetString(strings.TrimSpace(cfg.MinimumDonation), 10)
	if !ok {
		return nil, fmt.Errorf("config: MinimumDonation %q is not a decimal integer", cfg.MinimumDonation)
	}
	return min, nil
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("config: generate admin key: %w", err)
	}
	cfg := &Config{AdminAddress: key.PubKey().Address().String()}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
