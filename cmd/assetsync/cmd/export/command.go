// Package export implements the export command.
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/assetsync/internal/cmd/application"
	"github.com/agentstation/assetsync/internal/cmd/output"
)

// NewCommand creates the export command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		outDir  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "core",
		Short:   "Export vendors and models missing from the registry",
		Args:    cobra.NoArgs,
		Long: `Export reads every configured feed and the registry vendor and product
model tables, and writes the names the registry lacks to two spreadsheets
ready for bulk import:

  vendors.xlsx  (sheet "Vendor")
  models.xlsx   (sheet "Product Model")

Casper devices are listed under the configured casper.vendor_name.`,
		Example: `  assetsync export                  # Write spreadsheets to the current directory
  assetsync export --out /tmp/td    # Write them elsewhere
  assetsync export --preview -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}
			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			if preview {
				d, err := syncer.Discover(cmd.Context())
				if err != nil {
					return err
				}
				return output.FormatDiscovery(cmd.OutOrStdout(), format, d)
			}

			paths, err := syncer.Export(cmd.Context(), outDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			app.Logger().Info().Strs("files", paths).Msg("Export written")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "directory the spreadsheets are written to")
	cmd.Flags().BoolVar(&preview, "preview", false, "print what would be exported instead of writing files")

	return cmd
}
