package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"seqtrack/adapters/excel"
	"seqtrack/internal"
	"seqtrack/internal/config"
	"seqtrack/internal/container"
	"seqtrack/internal/projectid"
	"seqtrack/internal/records"
	"seqtrack/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "seqtrack-migrate [dir]",
		Short: "Import every run sheet workbook in a directory into the record store",
		Long: `Import every ` + strings.Join(excel.SupportedExtensions, "/") + ` file directly inside dir, in filename order.

The store and archive are taken from the same environment as the server
(STORE_DRIVER, DATABASE_URL, BLOB_DRIVER, ...).`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format)
			defer logger.Sync()

			svc, closeFn, err := openService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			return runImport(cmd.Context(), svc, args[0], workers, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Workbooks parsed in parallel")
	return cmd
}

func openService(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*records.Service, func(), error) {
	repo, err := container.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := storage.New(ctx, cfg.Blob)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	numbering, err := projectid.ParseNumbering(cfg.Records.Numbering)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	svc := records.NewService(repo,
		records.WithBlobStore(blobs),
		records.WithNumbering(numbering),
		records.WithMaxUploadBytes(cfg.Records.MaxUploadBytes),
		records.WithLogger(logger),
	)
	return svc, func() { repo.Close() }, nil
}

// runImport imports dir and reports each file; it fails when any file failed
func runImport(ctx context.Context, svc *records.Service, dir string, workers int, out io.Writer) error {
	paths, err := records.SpreadsheetsIn(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		fmt.Fprintf(out, "no workbooks found in %s\n", dir)
		return nil
	}

	results, err := svc.Import(ctx, paths, workers)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", res.File, res.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s -> %s (sequence %d)\n", res.File, res.Record.ID, res.Record.Sequence)
	}
	fmt.Fprintf(out, "imported %d of %d workbooks\n", len(results)-failed, len(results))

	if failed > 0 {
		return fmt.Errorf("%d workbooks failed to import", failed)
	}
	return nil
}
