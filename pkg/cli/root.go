// Package cli is the edutech command line: scripted card management, the
// terminal browser and database migration.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/client"
	"github.com/ChoisMath/edutech/pkg/config"
)

type App struct {
	APIURL      string
	Password    string
	Role        string
	Format      string
	DatabaseURL string

	maxThumbnailBytes int64
}

// promptPassword asks for a password when none was configured.
var promptPassword = func(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required: pass --password or set EDUTECH_PASSWORD")
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	return string(b), err
}

func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	app := &App{maxThumbnailBytes: cfg.MaxThumbnailBytes}

	cmd := &cobra.Command{
		Use:          "edutech",
		Short:        "EduTech card catalog CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the catalog in the terminal
  edutech browse

  # Scriptable commands
  edutech cards list --search "fraction"
  edutech cards add --url https://phet.colorado.edu --name PhET --subjects science,math
  edutech cards reorder 4 1 3 2

  # Move a local database to Turso or Postgres
  edutech db dump --db file:db.sqlite > cards.json
  edutech db import --db postgres://... cards.json
`),
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", cfg.APIURL, "Backend base URL")
	cmd.PersistentFlags().StringVar(&app.Password, "password", cfg.Password, "Password for mutating commands (prompted when empty)")
	cmd.PersistentFlags().StringVar(&app.Role, "role", envOr("EDUTECH_ROLE", "admin"), "Role (admin|viewer|public)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("EDUTECH_FORMAT", "table"), "Output format (table|json|yaml)")
	cmd.PersistentFlags().StringVar(&app.DatabaseURL, "db", cfg.DatabaseURL, "Database URL for db commands")

	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newThumbnailCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBrowseCmd(app))
	cmd.AddCommand(newDBCmd(app))

	return cmd
}

func (a *App) client() *client.Client {
	return client.New(a.APIURL, client.WithMaxThumbnailBytes(a.maxThumbnailBytes))
}

func (a *App) capabilities() (catalog.Capabilities, error) {
	return catalog.CapabilitiesFor(a.Role)
}

// password returns the --password value, falling back to an interactive prompt.
func (a *App) password(cmd *cobra.Command) (string, error) {
	if a.Password != "" {
		return a.Password, nil
	}
	pw, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", &client.ValidationError{Field: "password", Message: "Password is required"}
	}
	return pw, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
