package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/iksnae/knowledge-console/internal/export"
	"github.com/spf13/cobra"
)

var (
	format string
	output string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <N>",
	Short: "Export a stored conversation to a file",
	Long: `Export stored conversation N in one of the supported formats
(jsonl, md, yaml, json).

Without --output the transcript is written to stdout. When --output names
a directory, the file is created inside it as chat-N.<ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		summary, err := historyItem(cmd, args[0])
		if err != nil {
			return err
		}
		transcript := internal.TranscriptFromSummary(summary)
		transcript.ExportedAt = time.Now().UTC().Format(time.RFC3339)

		if output == "" || output == "-" {
			return exporter.Export(transcript, cmd.OutOrStdout())
		}

		path := output
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			path = filepath.Join(output, fmt.Sprintf("chat-%d.%s", summary.Ordinal, exporter.Extension()))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		if err := exporter.Export(transcript, f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to export %s: %w", strings.ToLower(summary.Title()), err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close file %s: %w", path, err)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Exported %s to %s", summary.Title(), path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (stdout when empty)")
}
