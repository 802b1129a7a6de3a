package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	transactionUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database/migration"
)

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Maintenance commands for the payment gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file, defaults to the PGW_ENV config")

	// run opens the app for one command and always closes it
	run := func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configFile)
			if err != nil {
				return err
			}
			defer a.close()
			return fn(cmd.Context(), a, args)
		}
	}

	root.AddCommand(
		newMigrateCommand(run),
		newSweepCommand(run),
		newReconcileCommand(run),
		newRolloverCommand(run),
		newSeedCommand(run),
		newMerchantCommand(run),
		newAPIKeyCommand(run),
	)
	return root
}

type runner func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error

func newMigrateCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		}),
	}
}

func newSweepCommand(run runner) *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Fail pending transactions whose payment window has passed",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			reaper := transactionUseCase.NewExpiryReaper(a.uow, a.ledger(), a.clock, a.logger, transactionUseCase.ReaperConfig{
				BatchSize: batch,
				LeaseTTL:  a.cfg.Reaper.LeaseTTL,
				Owner:     fmt.Sprintf("gatewayctl-%d", os.Getpid()),
			})
			total := 0
			for {
				n, err := reaper.Sweep(ctx)
				if err != nil {
					return err
				}
				total += n
				if n < batch || n == 0 {
					break
				}
			}
			fmt.Printf("expired %d transactions\n", total)
			return nil
		}),
	}
	cmd.Flags().IntVar(&batch, "batch", transactionUseCase.DefaultReaperBatch, "transactions per sweep")
	return cmd
}

func newReconcileCommand(run runner) *cobra.Command {
	var (
		fix        bool
		merchantID uint64
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored summaries with the transaction history",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			reconciler := a.reconciler()

			var reports []*transactionUseCase.ReconcileReport
			if merchantID > 0 {
				report, err := reconciler.ReconcileMerchant(ctx, merchantID, fix)
				if err != nil {
					return err
				}
				reports = append(reports, report)
			} else {
				var err error
				if reports, err = reconciler.ReconcileAll(ctx, fix); err != nil {
					return err
				}
			}

			drifted := 0
			for _, report := range reports {
				if len(report.Drifts) == 0 {
					continue
				}
				drifted++
				fmt.Printf("merchant %d (fixed=%t)\n", report.MerchantID, report.Fixed)
				for _, d := range report.Drifts {
					fmt.Printf("  %s\n", d)
				}
			}
			fmt.Printf("checked %d merchants, %d drifted\n", len(reports), drifted)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "overwrite drifted summaries")
	cmd.Flags().Uint64Var(&merchantID, "merchant", 0, "check a single merchant id")
	return cmd
}

func newRolloverCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Reset day and month summary buckets that are out of date",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			n, err := a.reconciler().RolloverAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("rolled over %d summaries\n", n)
			return nil
		}),
	}
}

func newSeedCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo merchant",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			return migration.CreateDefaultMerchants(ctx, a.merchants(), a.cfg.Seed.DemoAPIKey, a.logger)
		}),
	}
}

func newMerchantCommand(run runner) *cobra.Command {
	var verified bool
	register := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Register a merchant and print its API key",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			merchant, apiKey, err := a.merchants().RegisterMerchant(ctx, args[0], args[1], verified)
			if err != nil {
				return err
			}
			fmt.Printf("merchant %d registered\napi key: %s\n", merchant.ID, apiKey)
			return nil
		}),
	}
	register.Flags().BoolVar(&verified, "verified", true, "mark the merchant as verified")

	cmd := &cobra.Command{Use: "merchant", Short: "Manage merchants"}
	cmd.AddCommand(register)
	return cmd
}

func newAPIKeyCommand(run runner) *cobra.Command {
	rotate := &cobra.Command{
		Use:   "rotate <username|id>",
		Short: "Issue a new API key; the old one stops working",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			merchantID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				merchant, err := a.uow.GetMerchantRepository(ctx).GetByUsername(ctx, args[0])
				if err != nil {
					return err
				}
				merchantID = merchant.ID
			}
			apiKey, err := a.merchants().RotateAPIKey(ctx, merchantID)
			if err != nil {
				return err
			}
			fmt.Printf("api key: %s\n", apiKey)
			return nil
		}),
	}

	cmd := &cobra.Command{Use: "apikey", Short: "Manage merchant API keys"}
	cmd.AddCommand(rotate)
	return cmd
}
