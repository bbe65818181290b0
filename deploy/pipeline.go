package deploy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrStellarNotInstalled = errors.New("stellar CLI not found; install it from https://developers.stellar.org/docs/tools/cli")

// Result carries what the pipeline learned along the way. ContractID is set
// as soon as the deploy step succeeds, even if initialize later fails, so
// the operator can finish by hand.
type Result struct {
	AdminAddress string
	ContractID   string
	Initialized  bool
}

// Pipeline drives the stellar CLI through build, deploy, and initialize,
// failing fast on the first error. No retries, no rollback.
type Pipeline struct {
	config  *Config
	stellar *StellarCLI
	logger  *logrus.Logger
	stdin   io.Reader
	out     io.Writer

	// healthCheck is swappable in tests
	healthCheck func(ctx context.Context, rpcURL string) error
}

func NewPipeline(config *Config, runner Runner, logger *logrus.Logger) *Pipeline {
	if config == nil {
		config = LoadEnvironmentConfig()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	return &Pipeline{
		config:      config,
		stellar:     NewStellarCLI(runner),
		logger:      logger,
		stdin:       os.Stdin,
		out:         os.Stdout,
		healthCheck: CheckRPCHealth,
	}
}

// Run executes the full deployment sequence and returns the captured
// contract ID. On an initialize failure the partial Result is returned
// alongside the error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if !p.stellar.Installed() {
		return nil, ErrStellarNotInstalled
	}

	if err := p.resolveInputs(); err != nil {
		return nil, err
	}

	if !p.config.SkipHealthCheck {
		if err := p.healthCheck(ctx, p.config.RPCURL); err != nil {
			return nil, err
		}
		p.logger.WithField("rpc_url", p.config.RPCURL).Info("RPC endpoint healthy")
	}

	if err := p.ensureNetwork(ctx); err != nil {
		return nil, err
	}

	adminAddress, err := p.stellar.KeyAddress(ctx, p.config.SourceAccount)
	if err != nil {
		return nil, err
	}
	p.logger.WithField("admin", adminAddress).Info("resolved admin address")

	p.logger.Info("building contract")
	if err := p.stellar.BuildContract(ctx); err != nil {
		return nil, err
	}

	p.logger.Info("deploying contract")
	contractID, err := p.stellar.DeployContract(ctx, p.config.WasmPath, p.config.SourceAccount, p.config.NetworkName)
	if err != nil {
		return nil, err
	}
	result := &Result{AdminAddress: adminAddress, ContractID: contractID}
	p.logger.WithField("contract_id", contractID).Info("contract deployed")

	p.logger.Info("initializing contract")
	err = p.stellar.InitializeContract(ctx, contractID,
		p.config.SourceAccount, p.config.NetworkName,
		adminAddress, p.config.TokenAddress,
		EarlyWithdrawPenaltyBps, EmergencyPenaltyBps,
		LockPeriods, BonusBps)
	if err != nil {
		// Deployed but uninitialized; report the ID so the operator can
		// invoke initialize manually.
		fmt.Fprintf(p.out, "Contract deployed but NOT initialized: %s\n", contractID)
		return result, err
	}
	result.Initialized = true

	fmt.Fprintln(p.out, contractID)
	return result, nil
}

// resolveInputs fills SOURCE_ACCOUNT and TOKEN_ADDRESS, prompting for any
// that are unset. Empty after prompting is a hard error.
func (p *Pipeline) resolveInputs() error {
	reader := bufio.NewReader(p.stdin)

	if p.config.SourceAccount == "" {
		p.config.SourceAccount = p.prompt(reader, "Enter source account name: ")
	}
	if p.config.SourceAccount == "" {
		return errors.New("SOURCE_ACCOUNT is required")
	}

	if p.config.TokenAddress == "" {
		p.config.TokenAddress = p.prompt(reader, "Enter token contract address: ")
	}
	if p.config.TokenAddress == "" {
		return errors.New("TOKEN_ADDRESS is required")
	}

	return nil
}

func (p *Pipeline) prompt(reader *bufio.Reader, label string) string {
	fmt.Fprint(p.out, label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// ensureNetwork registers the target network only when `network ls` does
// not already list it.
func (p *Pipeline) ensureNetwork(ctx context.Context) error {
	exists, err := p.stellar.NetworkExists(ctx, p.config.NetworkName)
	if err != nil {
		return err
	}
	if exists {
		p.logger.WithField("network", p.config.NetworkName).Info("network already registered")
		return nil
	}

	p.logger.WithField("network", p.config.NetworkName).Info("registering network")
	return p.stellar.AddNetwork(ctx, p.config.NetworkName, p.config.RPCURL, p.config.NetworkPassphrase)
}
