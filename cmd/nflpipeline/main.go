// Command nflpipeline downloads NFL datasets, writes them as JSON files and optionally pushes them
// to the remote database.
//
// Usage:
//
//	nflpipeline                      run every step for the current season
//	nflpipeline stats --years 2023,2024
//	nflpipeline projections --years 2018,2019,2020
//	nflpipeline sample
//	nflpipeline upload players rosters_2024.json
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nfl-data-pipeline/internal/app"
	"github.com/riskibarqy/nfl-data-pipeline/internal/config"
	"github.com/riskibarqy/nfl-data-pipeline/internal/observability"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
	"github.com/riskibarqy/nfl-data-pipeline/internal/usecase"
	"github.com/spf13/cobra"
)

type pipeline interface {
	RunFull(ctx context.Context) usecase.RunReport
	RunSample(ctx context.Context) error
	FetchTeams(ctx context.Context) usecase.StepReport
	FetchRosters(ctx context.Context, years []int) usecase.StepReport
	FetchPlayerStats(ctx context.Context, years []int, statType string) usecase.StepReport
	FetchSchedule(ctx context.Context, years []int) usecase.StepReport
	FetchInjuries(ctx context.Context) usecase.StepReport
	CreateProjectionDataset(ctx context.Context, years []int) usecase.StepReport
	UploadFile(ctx context.Context, dataType, fileName string) (usecase.UploadResult, error)
}

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
	}

	svc, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		stop()
		os.Exit(1)
	}

	execErr := execute(ctx, newRootCmd(svc, logger), os.Args[1:], os.Stdout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("flush traces", "error", err)
	}
	cancel()
	stop()
	_ = logger.Sync()

	if execErr != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Step failures are logged and never fail the command; only
// the sample pipeline reports failure to the shell.
func newRootCmd(svc pipeline, logger *logging.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "nflpipeline",
		Short:         "NFL data pipeline: fetch datasets, write JSON files, upload to the database",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Usage()
			}
			svc.RunFull(cmd.Context())
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "full",
		Short: "Run every fetch step for the current season",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc.RunFull(cmd.Context())
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "teams",
		Short: "Fetch team descriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc.FetchTeams(cmd.Context())
			return nil
		},
	})
	root.AddCommand(yearsCmd("rosters", "Fetch season rosters", func(ctx context.Context, years []int) {
		svc.FetchRosters(ctx, years)
	}))
	root.AddCommand(statsCmd(svc))
	root.AddCommand(yearsCmd("schedule", "Fetch the game schedule", func(ctx context.Context, years []int) {
		svc.FetchSchedule(ctx, years)
	}))
	root.AddCommand(&cobra.Command{
		Use:   "injuries",
		Short: "Fetch injury reports for the current season",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc.FetchInjuries(cmd.Context())
			return nil
		},
	})
	root.AddCommand(yearsCmd("projections", "Build the multi-season projection dataset", func(ctx context.Context, years []int) {
		svc.CreateProjectionDataset(ctx, years)
	}))
	root.AddCommand(&cobra.Command{
		Use:     "sample",
		Aliases: []string{"simple"},
		Short:   "Write the static sample dataset without network access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := svc.RunSample(cmd.Context()); err != nil {
				logger.Error("sample pipeline failed", "error", err)
				return err
			}
			return nil
		},
	})
	root.AddCommand(uploadCmd(svc, logger))

	return root
}

func yearsCmd(use, short string, run func(ctx context.Context, years []int)) *cobra.Command {
	var years []int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run(cmd.Context(), years)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&years, "years", nil, "Seasons to fetch (default: configured seasons)")
	return cmd
}

func statsCmd(svc pipeline) *cobra.Command {
	var (
		years     []int
		statTypes []string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch weekly player stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, statType := range statTypes {
				svc.FetchPlayerStats(cmd.Context(), years, statType)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&years, "years", nil, "Seasons to fetch (default: current season)")
	cmd.Flags().StringSliceVar(&statTypes, "type", []string{usecase.StatTypePassing},
		"Stat types to fetch, e.g. passing,rushing,receiving; unknown types keep every weekly column")
	return cmd
}

func uploadCmd(svc pipeline, logger *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <data_type> <file>",
		Short: "Push a dataset file to the remote database",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return cmd.Usage()
			}
			result, err := svc.UploadFile(cmd.Context(), args[0], args[1])
			if err != nil {
				logger.Error("upload failed",
					"data_type", args[0],
					"file", args[1],
					"attempted_batches", result.AttemptedBatches,
					"error", err,
				)
				return nil
			}
			logger.Info("upload finished",
				"data_type", result.DataType,
				"resource", result.Resource,
				"records", result.UploadedRecords,
				"batches", result.TotalBatches,
			)
			return nil
		},
	}
}

// execute runs the command tree against args and writes help and usage to out.
func execute(ctx context.Context, root *cobra.Command, args []string, out io.Writer) error {
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}
