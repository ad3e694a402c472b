package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"seqtrack/adapters/excel"
	"seqtrack/internal"
	"seqtrack/internal/config"
	"seqtrack/internal/container"
	"seqtrack/internal/projectid"
	"seqtrack/internal/records"
	"seqtrack/models"
	"seqtrack/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seqtrack-cli",
		Short:         "Inspect run sheet workbooks and manage the record store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newExtractCmd(),
		newIDsCmd(),
		newLayoutCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the record read from a workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := excel.NewDefaultExtractor().ExtractFile(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newIDsCmd() *cobra.Command {
	var index int
	var sequence int64
	var numbering string

	cmd := &cobra.Command{
		Use:   "ids [file]",
		Short: "Print the project IDs a workbook would get in the table",
		Long: `Print one project ID per customer in the workbook.

With stable numbering the ID follows --sequence (the stored upload sequence);
with positional numbering it follows --index (zero-based table position).

Example: seqtrack-cli ids run.xlsx --numbering positional --index 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := projectid.ParseNumbering(numbering)
			if err != nil {
				return err
			}
			if index < 0 {
				return fmt.Errorf("--index must not be negative")
			}
			rec, err := excel.NewDefaultExtractor().ExtractFile(args[0])
			if err != nil {
				return err
			}
			rec.Sequence = sequence
			return printRows(cmd.OutOrStdout(), projectid.Expand(rec, n.SequenceNumberFor(rec, index)))
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Zero-based position of the record in the table")
	cmd.Flags().Int64Var(&sequence, "sequence", 0, "Stored upload sequence of the record")
	cmd.Flags().StringVar(&numbering, "numbering", string(projectid.NumberingStable), "Numbering mode: stable or positional")
	return cmd
}

func printRows(w io.Writer, rows []models.DisplayRow) error {
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", row.ProjectID, row.ILabID, row.FullName); err != nil {
			return err
		}
	}
	return nil
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the cells read from an uploaded workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), ui.HelpMarkdown(excel.DefaultLayout(), records.DefaultMaxUploadBytes))
			return err
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the record schema (SQL) or indexes (mongo) for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg.Database, cmd.OutOrStdout())
		},
	}
}

func migrate(ctx context.Context, cfg config.DatabaseConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := container.OpenStore(ctx, cfg, internal.NewDefaultLogger())
	if err != nil {
		return err
	}
	defer repo.Close()
	_, err = fmt.Fprintf(out, "%s store ready\n", cfg.Driver)
	return err
}
