package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	for _, key := range []string{"NETWORK_NAME", "RPC_URL", "NETWORK_PASSPHRASE", "WASM_PATH", "SOURCE_ACCOUNT", "TOKEN_ADDRESS", "SKIP_HEALTH_CHECK"} {
		t.Setenv(key, "")
	}

	config := LoadEnvironmentConfig()
	assert.Equal(t, DefaultNetworkName, config.NetworkName)
	assert.Equal(t, DefaultRPCURL, config.RPCURL)
	assert.Equal(t, DefaultNetworkPassphrase, config.NetworkPassphrase)
	assert.Equal(t, DefaultWasmPath, config.WasmPath)
	assert.Empty(t, config.SourceAccount)
	assert.Empty(t, config.TokenAddress)
}

func TestLoadEnvironmentConfigOverrides(t *testing.T) {
	t.Setenv("SOURCE_ACCOUNT", "alice")
	t.Setenv("TOKEN_ADDRESS", "CTOKEN")
	t.Setenv("RPC_URL", "https://example.org:443")
	t.Setenv("SKIP_HEALTH_CHECK", "true")

	config := LoadEnvironmentConfig()
	assert.Equal(t, "alice", config.SourceAccount)
	assert.Equal(t, "CTOKEN", config.TokenAddress)
	assert.Equal(t, "https://example.org:443", config.RPCURL)
	assert.True(t, config.SkipHealthCheck)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	profile := `network_name: futurenet
rpc_url: https://rpc.futurenet.stellar.org:443
source_account: bob
`
	if err := os.WriteFile(path, []byte(profile), 0o644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	config := &Config{
		NetworkName:       DefaultNetworkName,
		RPCURL:            DefaultRPCURL,
		NetworkPassphrase: DefaultNetworkPassphrase,
		TokenAddress:      "CTOKEN",
	}
	assert.NoError(t, config.LoadProfile(path))

	// Overlaid fields win, untouched fields survive
	assert.Equal(t, "futurenet", config.NetworkName)
	assert.Equal(t, "https://rpc.futurenet.stellar.org:443", config.RPCURL)
	assert.Equal(t, "bob", config.SourceAccount)
	assert.Equal(t, DefaultNetworkPassphrase, config.NetworkPassphrase)
	assert.Equal(t, "CTOKEN", config.TokenAddress)
}

func TestLoadProfileMissingFile(t *testing.T) {
	config := LoadEnvironmentConfig()
	assert.Error(t, config.LoadProfile("/nonexistent/profile.yaml"))
}

func TestDeploymentConstants(t *testing.T) {
	// Forwarded verbatim to the contract's initialize call.
	assert.Equal(t, uint32(1000), uint32(EarlyWithdrawPenaltyBps))
	assert.Equal(t, uint32(2500), uint32(EmergencyPenaltyBps))
	assert.Equal(t, []uint64{604800, 2592000, 7776000}, LockPeriods)
	assert.Equal(t, []uint32{500, 1200, 2500}, BonusBps)
}
