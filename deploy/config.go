package deploy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Testnet deployment defaults, forwarded verbatim to the contract's
// initialize call.
const (
	DefaultNetworkName       = "testnet"
	DefaultRPCURL            = "https://soroban-testnet.stellar.org:443"
	DefaultNetworkPassphrase = "Test SDF Network ; September 2015"
	DefaultWasmPath          = "target/wasm32-unknown-unknown/release/reward_vault.wasm"

	EarlyWithdrawPenaltyBps = 1000 // 10% penalty before maturity
	EmergencyPenaltyBps     = 2500 // 25% penalty on emergency unlock
)

// Lock tiers: one week, one month, one quarter (seconds), with their bonus
// rates in basis points.
var (
	LockPeriods = []uint64{604800, 2592000, 7776000}
	BonusBps    = []uint32{500, 1200, 2500}
)

// Config holds everything the deployment pipeline needs.
type Config struct {
	NetworkName       string `yaml:"network_name"`
	RPCURL            string `yaml:"rpc_url"`
	NetworkPassphrase string `yaml:"network_passphrase"`
	WasmPath          string `yaml:"wasm_path"`
	SourceAccount     string `yaml:"source_account"`
	TokenAddress      string `yaml:"token_address"`
	SkipHealthCheck   bool   `yaml:"skip_health_check"`
}

// LoadEnvironmentConfig builds a Config from environment variables with
// testnet defaults. SOURCE_ACCOUNT and TOKEN_ADDRESS may stay empty here;
// the pipeline prompts for them.
func LoadEnvironmentConfig() *Config {
	return &Config{
		NetworkName:       getEnv("NETWORK_NAME", DefaultNetworkName),
		RPCURL:            getEnv("RPC_URL", DefaultRPCURL),
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", DefaultNetworkPassphrase),
		WasmPath:          getEnv("WASM_PATH", DefaultWasmPath),
		SourceAccount:     os.Getenv("SOURCE_ACCOUNT"),
		TokenAddress:      os.Getenv("TOKEN_ADDRESS"),
		SkipHealthCheck:   getEnvBool("SKIP_HEALTH_CHECK", false),
	}
}

// LoadProfile overlays a YAML profile file onto the config. Empty fields in
// the file keep their current values.
func (c *Config) LoadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile: %v", err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse profile: %v", err)
	}
	if overlay.NetworkName != "" {
		c.NetworkName = overlay.NetworkName
	}
	if overlay.RPCURL != "" {
		c.RPCURL = overlay.RPCURL
	}
	if overlay.NetworkPassphrase != "" {
		c.NetworkPassphrase = overlay.NetworkPassphrase
	}
	if overlay.WasmPath != "" {
		c.WasmPath = overlay.WasmPath
	}
	if overlay.SourceAccount != "" {
		c.SourceAccount = overlay.SourceAccount
	}
	if overlay.TokenAddress != "" {
		c.TokenAddress = overlay.TokenAddress
	}
	if overlay.SkipHealthCheck {
		c.SkipHealthCheck = true
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
