package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChoisMath/edutech/pkg/core/domain"
)

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return write(cmd.OutOrStdout(), v, app.Format)
}

func write(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeTable(w, v)
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}

func writeTable(w io.Writer, v any) error {
	switch x := v.(type) {
	case []domain.Card:
		return writeCardTable(w, x)
	case *domain.Card:
		return writeCardTable(w, []domain.Card{*x})
	case string:
		_, err := fmt.Fprintln(w, x)
		return err
	}
	return write(w, v, "json")
}

// cellStyle pads columns apart; widths come from display cells, so
// Korean names line up with ASCII ones.
var cellStyle = lipgloss.NewStyle().PaddingRight(2)

func writeCardTable(w io.Writer, cards []domain.Card) error {
	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers("ID", "ORDER", "VIEW", "NAME", "URL", "SUBJECTS", "KEYWORDS")
	for _, c := range cards {
		t.Row(
			fmt.Sprint(c.ID),
			optInt(c.SortOrder),
			viewLabel(c),
			c.WebpageName,
			c.URL,
			strings.Join(c.UsefulSubjects, ","),
			strings.Join(c.Keyword, ","),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func viewLabel(c domain.Card) string {
	if c.Hidden() {
		return "hidden"
	}
	return "public"
}
