package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChoisMath/edutech/pkg/adapters/repository"
	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

func newDBCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Dump and import the card table directly (bypasses the API)",
	}
	cmd.AddCommand(newDBDumpCmd(app))
	cmd.AddCommand(newDBImportCmd(app))
	return cmd
}

func (a *App) openRepo() (ports.CardRepository, error) {
	if a.DatabaseURL == "" {
		return nil, errors.New("database URL required: pass --db or set DATABASE_URL")
	}
	repo, err := repository.Open(a.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", repository.Backend(a.DatabaseURL), err)
	}
	return repo, nil
}

func newDBDumpCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Write every card, hidden ones included, as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			cards, err := repo.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			format := app.Format
			if format != "yaml" {
				format = "json"
			}
			return write(cmd.OutOrStdout(), cards, format)
		},
	}
}

func newDBImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Insert cards from a dump; URLs already stored are skipped",
		Long: `Reads a dump written by "db dump". Files ending in .yaml or .yml are read
as YAML, everything else as JSON. Use - to read JSON from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := readDump(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			repo, err := app.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			imported, skipped := 0, 0
			for i := range cards {
				c := cards[i]
				c.ID = 0
				if c.CreatedAt.IsZero() {
					c.CreatedAt = time.Now()
				}
				if c.UpdatedAt.IsZero() {
					c.UpdatedAt = c.CreatedAt
				}
				err := repo.Create(ctx, &c)
				if errors.Is(err, domain.ErrURLExists) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping existing url: %s\n", c.URL)
					skipped++
					continue
				}
				if err != nil {
					return fmt.Errorf("import %s: %w", c.URL, err)
				}
				imported++
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d cards, skipped %d\n", imported, skipped)
			return nil
		},
	}
}

func readDump(stdin io.Reader, name string) ([]domain.Card, error) {
	var r io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var cards []domain.Card
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&cards); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&cards); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return cards, nil
}
