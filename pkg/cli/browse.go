package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/tui"
)

func newBrowseCmd(app *App) *cobra.Command {
	var exportDir string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse, search and rearrange cards in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			dragger := tui.NewKeyDragger()
			a := catalog.NewApp(app.client(), caps, dragger)
			m := tui.New(cmd.Context(), a, dragger, tui.Options{ExportDir: exportDir})

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory for workbooks exported from the browser")
	return cmd
}
