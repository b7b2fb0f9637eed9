package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rogersnm/taskmanager/internal/export"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered task list as JSON, CSV or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		search, _ := cmd.Flags().GetString("search")
		statusStr, _ := cmd.Flags().GetString("status")
		status, err := model.ParseStatus(statusStr)
		if err != nil {
			return err
		}

		data, err := export.NewExporter(st).Export(cmd.Context(), format, store.Filter{Keyword: search, Status: status})
		if err != nil {
			return err
		}

		if outPath == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", export.FormatJSON, "output format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringP("search", "k", "", "keyword to match in title or description")
	exportCmd.Flags().StringP("status", "s", "", "filter by status (pending, in-progress, completed)")
	rootCmd.AddCommand(exportCmd)
}
