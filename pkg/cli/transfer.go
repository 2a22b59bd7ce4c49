package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/client"
)

func newThumbnailCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbnail",
		Short: "Manage thumbnail images",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a := catalog.NewApp(app.client(), caps, nil)
			thumb, err := a.UploadThumbnail(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, thumb)
		},
	})
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every card as an Excel workbook (admin password)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			pw, err := app.password(cmd)
			if err != nil {
				return err
			}
			a := catalog.NewApp(app.client(), caps, nil)
			data, err := a.Export(cmd.Context(), pw)
			if err != nil {
				return err
			}
			if out == "" {
				out = client.ExportFilename(time.Now())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default edutech_cards_<date>.xlsx)")
	return cmd
}
