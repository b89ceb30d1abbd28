package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"donorchain/crypto"
)

func testAdminAddress(t *testing.T) string {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return key.PubKey().Address().String()
}

func TestLoadParsesSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	admin := testAdminAddress(t)
	contents := fmt.Sprintf(`RPCAddress = "0.0.0.0:9000"
DataDir = "./ledger-data"
AdminAddress = %q
MinimumDonation = "2500000"
NetworkName = "donor-testnet"
`, admin)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.RPCAddress)
	require.Equal(t, "./ledger-data", cfg.DataDir)
	require.Equal(t, "donor-testnet", cfg.NetworkName)

	min, err := cfg.MinimumDonationAmount()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(2_500_000), min)

	parsed, err := cfg.Admin()
	require.NoError(t, err)
	require.Equal(t, admin, parsed.String())
}

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NotEmpty(t, cfg.AdminAddress)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.Equal(t, "1000000", cfg.MinimumDonation)

	// Reloading the generated file must succeed.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.AdminAddress, again.AdminAddress)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bad-admin.toml")
	require.NoError(t, os.WriteFile(path, []byte(`AdminAddress = "not-an-address"`), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	path = filepath.Join(dir, "bad-minimum.toml")
	contents := fmt.Sprintf("AdminAddress = %q\nMinimumDonation = \"0\"\n", testAdminAddress(t))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}
