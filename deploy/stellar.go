package deploy

import (
	"context"
	"fmt"
	"strings"
)

const stellarBinary = "stellar"

// StellarCLI wraps the subcommands of the stellar binary the pipeline
// drives.
type StellarCLI struct {
	runner Runner
}

func NewStellarCLI(runner Runner) *StellarCLI {
	return &StellarCLI{runner: runner}
}

// Installed reports whether the stellar binary is on PATH.
func (s *StellarCLI) Installed() bool {
	_, err := s.runner.LookPath(stellarBinary)
	return err == nil
}

// NetworkExists checks `stellar network ls` output for the named network.
// Matching is per whole line word so "mytestnet" does not count as
// "testnet".
func (s *StellarCLI) NetworkExists(ctx context.Context, name string) (bool, error) {
	output, err := s.runner.Run(ctx, stellarBinary, "network", "ls")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(output, "\n") {
		for _, field := range strings.Fields(line) {
			if field == name {
				return true, nil
			}
		}
	}
	return false, nil
}

// AddNetwork registers a network profile with the stellar CLI.
func (s *StellarCLI) AddNetwork(ctx context.Context, name, rpcURL, passphrase string) error {
	_, err := s.runner.Run(ctx, stellarBinary, "network", "add", name,
		"--rpc-url", rpcURL,
		"--network-passphrase", passphrase)
	return err
}

// KeyAddress resolves a configured key name to its public address.
func (s *StellarCLI) KeyAddress(ctx context.Context, account string) (string, error) {
	address, err := s.runner.Run(ctx, stellarBinary, "keys", "address", account)
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", fmt.Errorf("no address found for account %q", account)
	}
	return address, nil
}

// BuildContract compiles the contract to wasm.
func (s *StellarCLI) BuildContract(ctx context.Context) error {
	_, err := s.runner.Run(ctx, stellarBinary, "contract", "build")
	return err
}

// DeployContract uploads the wasm and returns the new contract ID, which
// the CLI prints on stdout.
func (s *StellarCLI) DeployContract(ctx context.Context, wasmPath, sourceAccount, network string) (string, error) {
	contractID, err := s.runner.Run(ctx, stellarBinary, "contract", "deploy",
		"--wasm", wasmPath,
		"--source-account", sourceAccount,
		"--network", network)
	if err != nil {
		return "", err
	}
	if contractID == "" {
		return "", fmt.Errorf("deploy produced no contract ID")
	}
	return contractID, nil
}

// InitializeContract invokes the contract's initialize entrypoint with the
// vault parameters. lockPeriods and bonusBps are encoded as JSON arrays the
// way the stellar CLI expects Vec arguments.
func (s *StellarCLI) InitializeContract(ctx context.Context, contractID, sourceAccount, network, admin, tokenAddress string, earlyPenaltyBps, emergencyPenaltyBps uint32, lockPeriods []uint64, bonusBps []uint32) error {
	_, err := s.runner.Run(ctx, stellarBinary, "contract", "invoke",
		"--id", contractID,
		"--source-account", sourceAccount,
		"--network", network,
		"--",
		"initialize",
		"--admin", admin,
		"--token", tokenAddress,
		"--early_withdraw_penalty_bps", fmt.Sprintf("%d", earlyPenaltyBps),
		"--emergency_penalty_bps", fmt.Sprintf("%d", emergencyPenaltyBps),
		"--lock_periods", encodeUint64Array(lockPeriods),
		"--bonus_bps", encodeUint32Array(bonusBps))
	return err
}

func encodeUint64Array(values []uint64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func encodeUint32Array(values []uint32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
