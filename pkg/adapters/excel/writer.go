package excel

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

const (
	SheetName   = "EduTech Cards"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxColWidth = 50
	headerFill  = "366092"
	timeLayout  = "2006-01-02 15:04:05"
)

var Headers = []string{
	"ID", "Webpage Name", "URL", "Summary", "Useful Subjects",
	"Keywords", "Educational Meaning", "Created At", "Updated At", "Sort Order",
}

// Writer renders cards as a single-sheet xlsx workbook.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) ContentType() string {
	return ContentType
}

func (w *Writer) Write(out io.Writer, cards []domain.Card) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	widths := make([]int, len(Headers))
	rows := make([][]interface{}, 0, len(cards)+1)

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	rows = append(rows, header)
	for _, c := range cards {
		rows = append(rows, cardRow(c))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		for col, v := range row {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, style); err != nil {
		return err
	}

	for col, n := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, ColumnWidth(n)); err != nil {
			return err
		}
	}

	return f.Write(out)
}

// ColumnWidth pads the longest value by two characters, capped at 50.
func ColumnWidth(longest int) float64 {
	return float64(min(longest+2, maxColWidth))
}

func cardRow(c domain.Card) []interface{} {
	var sortOrder interface{} = ""
	if c.SortOrder != nil {
		sortOrder = *c.SortOrder
	}
	return []interface{}{
		c.ID,
		c.WebpageName,
		c.URL,
		c.UserSummary,
		strings.Join(c.UsefulSubjects, ", "),
		strings.Join(c.Keyword, ", "),
		c.EducationalMeaning,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		sortOrder,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// Ensure interface compliance
var _ ports.SpreadsheetWriter = (*Writer)(nil)
