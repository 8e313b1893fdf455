package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

const (
	ErrorsColumnTitle = "ERRORS"
	SummarySheetName  = "Error Summary"

	colorErrorHeader = "#DC2626"
	colorErrorRow    = "#FEE2E2"
	colorHeader      = "#1E40AF"
	colorWhite       = "#FFFFFF"
)

var summaryColumns = []struct {
	title string
	width float64
}{
	{"Row", 10},
	{"Column", 20},
	{"Value Received", 25},
	{"Message", 70},
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

// Annotator builds the downloadable workbook returned on data rejection.
type Annotator struct {
	schema *schema.Schema
}

func NewAnnotator(s *schema.Schema) *Annotator {
	return &Annotator{schema: s}
}

// Annotate copies the original workbook, appends an ERRORS column carrying every
// message for a row, highlights those rows and adds an Error Summary sheet. Cell
// values of the original sheet are left untouched.
func (a *Annotator) Annotate(data []byte, errs []model.RowError) ([]byte, error) {
	var out []byte

	err := withWorkbook(data, func(f *excelize.File) error {
		sheet, rows, err := sheetRows(f, a.schema)
		if err != nil {
			return err
		}

		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}

		if err := a.appendErrorColumn(f, sheet, width+1, errs); err != nil {
			return err
		}
		if err := writeSummary(f, errs); err != nil {
			return err
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fmt.Errorf("failed to write annotated workbook: %w", err)
		}
		out = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Annotator) appendErrorColumn(f *excelize.File, sheet string, col int, errs []model.RowError) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorWhite},
		Fill: solidFill(colorErrorHeader),
	})
	if err != nil {
		return err
	}
	messageStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: colorErrorHeader},
		Fill:      solidFill(colorErrorRow),
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	header := cellName(col, 1)
	if err := f.SetCellValue(sheet, header, ErrorsColumnTitle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, header, header, headerStyle); err != nil {
		return err
	}
	colName, _ := excelize.ColumnNumberToName(col)
	if err := f.SetColWidth(sheet, colName, colName, 60); err != nil {
		return err
	}

	var order []int
	byRow := make(map[int][]string)
	for _, e := range errs {
		if _, seen := byRow[e.Row]; !seen {
			order = append(order, e.Row)
		}
		byRow[e.Row] = append(byRow[e.Row], fmt.Sprintf("[%s] %s", e.Column, e.Message))
	}

	highlight := newHighlighter(f)
	for _, row := range order {
		for c := 1; c < col; c++ {
			if err := highlight.apply(sheet, cellName(c, row)); err != nil {
				return err
			}
		}

		cell := cellName(col, row)
		if err := f.SetCellValue(sheet, cell, strings.Join(byRow[row], "\n")); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, messageStyle); err != nil {
			return err
		}
	}
	return nil
}

// highlighter adds the error fill to a cell while keeping its number format,
// font and alignment. Derived styles are cached by original style id.
type highlighter struct {
	f       *excelize.File
	derived map[int]int
}

func newHighlighter(f *excelize.File) *highlighter {
	return &highlighter{f: f, derived: make(map[int]int)}
}

func (h *highlighter) apply(sheet, cell string) error {
	orig, err := h.f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}

	id, ok := h.derived[orig]
	if !ok {
		style, err := h.f.GetStyle(orig)
		if err != nil {
			return err
		}
		style.Fill = solidFill(colorErrorRow)
		if id, err = h.f.NewStyle(style); err != nil {
			return err
		}
		h.derived[orig] = id
	}
	return h.f.SetCellStyle(sheet, cell, cell, id)
}

func writeSummary(f *excelize.File, errs []model.RowError) error {
	if _, err := f.NewSheet(SummarySheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorWhite},
		Fill: solidFill(colorHeader),
	})
	if err != nil {
		return err
	}

	titles := make([]any, len(summaryColumns))
	for i, c := range summaryColumns {
		titles[i] = c.title
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SummarySheetName, name, name, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(SummarySheetName, "A1", &titles); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheetName, "A1", cellName(len(summaryColumns), 1), headerStyle); err != nil {
		return err
	}

	for i, e := range errs {
		values := []any{e.Row, e.Column, e.Value, e.Message}
		if err := f.SetSheetRow(SummarySheetName, cellName(1, i+2), &values); err != nil {
			return err
		}
	}
	return nil
}
