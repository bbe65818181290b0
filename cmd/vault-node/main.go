package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaultforge/reward-vault/core/store"
	"github.com/vaultforge/reward-vault/core/token"
	"github.com/vaultforge/reward-vault/core/vault"
	"github.com/vaultforge/reward-vault/deploy"
	"github.com/vaultforge/reward-vault/monitor"
)

const vaultAddress = "vault"

var (
	dbPath     string
	listenAddr string
	adminAddr  string
)

func main() {
	root := &cobra.Command{
		Use:   "vault-node",
		Short: "Run an in-process reward vault with a status dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})

			zapLogger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ledger := token.NewToken("Reward Token", "RWD", 7, 0)
			balances, err := st.LoadBalances()
			if err != nil {
				return err
			}
			for address, balance := range balances {
				ledger.SetBalance(address, balance)
			}

			v := vault.NewRewardVault(vaultAddress, ledger, zapLogger)

			config, err := st.LoadConfig()
			if err != nil {
				return err
			}
			if config != nil {
				positions, err := st.LoadPositions()
				if err != nil {
					return err
				}
				if err := v.Restore(*config, positions); err != nil {
					return err
				}
				logger.WithField("positions", len(positions)).Info("restored vault state")
			} else {
				// Fresh node: initialize with the same schedule the deployed
				// contract uses.
				err := v.Initialize(adminAddr, "RWD",
					deploy.EarlyWithdrawPenaltyBps, deploy.EmergencyPenaltyBps,
					deploy.LockPeriods, deploy.BonusBps)
				if err != nil {
					return err
				}
				logger.Info("initialized fresh vault")
			}
			v.SetPersister(st)
			// Initialize ran before the persister was attached; flush the
			// config now so a restart restores it.
			if err := st.SaveConfig(*v.Config()); err != nil {
				return err
			}
			v.OnEvent(func(event vault.VaultEvent) {
				if err := st.AppendEvent(event); err != nil {
					logger.WithError(err).Warn("failed to persist event")
				}
				// Every vault mutation moves ledger balances; snapshot them
				// so positions stay redeemable after a restart.
				if err := st.SaveBalances(ledger.GetAllBalances()); err != nil {
					logger.WithError(err).Warn("failed to persist balances")
				}
			})

			dashboard := monitor.NewDashboard(v, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- dashboard.Start(listenAddr)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.WithField("signal", sig.String()).Info("shutting down")
				return nil
			}
		},
	}

	root.Flags().StringVar(&dbPath, "db", "./data/vault.db", "bbolt database path")
	root.Flags().StringVar(&listenAddr, "listen", ":8090", "dashboard listen address")
	root.Flags().StringVar(&adminAddr, "admin", "admin", "admin ledger address for a fresh vault")

	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
