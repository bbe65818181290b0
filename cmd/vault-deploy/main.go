package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vaultforge/reward-vault/deploy"
)

var (
	profilePath   string
	sourceAccount string
	tokenAddress  string
	networkName   string
	wasmPath      string
	skipHealth    bool
	verbose       bool
)

func main() {
	root := &cobra.Command{
		Use:   "vault-deploy",
		Short: "Build, deploy, and initialize the reward-vault contract on Stellar testnet",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			config := deploy.LoadEnvironmentConfig()
			if profilePath != "" {
				if err := config.LoadProfile(profilePath); err != nil {
					return err
				}
			}
			if sourceAccount != "" {
				config.SourceAccount = sourceAccount
			}
			if tokenAddress != "" {
				config.TokenAddress = tokenAddress
			}
			if networkName != "" {
				config.NetworkName = networkName
			}
			if wasmPath != "" {
				config.WasmPath = wasmPath
			}
			if skipHealth {
				config.SkipHealthCheck = true
			}

			pipeline := deploy.NewPipeline(config, deploy.NewExecRunner(logger), logger)
			result, err := pipeline.Run(cmd.Context())
			if err != nil {
				if errors.Is(err, deploy.ErrStellarNotInstalled) {
					color.Yellow("⚠️  %v", err)
				} else {
					color.Red("❌ deployment failed: %v", err)
				}
				if result != nil && result.ContractID != "" {
					color.Yellow("Contract ID (uninitialized): %s", result.ContractID)
				}
				return err
			}

			color.Green("✅ Reward vault deployed and initialized")
			color.Cyan("Admin address: %s", result.AdminAddress)
			color.Cyan("Contract ID:   %s", result.ContractID)
			return nil
		},
	}

	root.Flags().StringVar(&profilePath, "profile", "", "YAML deployment profile")
	root.Flags().StringVar(&sourceAccount, "source-account", "", "stellar key name (default $SOURCE_ACCOUNT, prompted if unset)")
	root.Flags().StringVar(&tokenAddress, "token-address", "", "deposit token contract address (default $TOKEN_ADDRESS, prompted if unset)")
	root.Flags().StringVar(&networkName, "network", "", "network profile name (default testnet)")
	root.Flags().StringVar(&wasmPath, "wasm", "", "path to the compiled contract wasm")
	root.Flags().BoolVar(&skipHealth, "skip-health", false, "skip the RPC preflight health check")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
