package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/knowledge-console/internal"
	"github.com/spf13/cobra"
)

var docType string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Upload a document to the knowledge base",
	Long: `Upload a text or PDF document so later questions can be answered from it.

The document type is taken from --type, or from the file extension when
--type is not given (.pdf is pdf, anything else is text).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		kind := docType
		if !cmd.Flags().Changed("type") {
			kind = docTypeFor(path)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var resp *internal.IngestResponse
		internal.ShowProgress(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Uploading %s...", filepath.Base(path)), func() {
			resp, err = a.client.Ingest(cmd.Context(), filepath.Base(path), f, kind, a.auth.Token())
		})
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if resp.Status != "success" {
			internal.PrintError(out, resp.Message)
			return fmt.Errorf("ingest rejected: %s", resp.Status)
		}
		internal.PrintSuccess(out, resp.Message)
		return nil
	},
}

func docTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "pdf"
	}
	return "text"
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&docType, "type", "text", "Document type: text or pdf")
}
