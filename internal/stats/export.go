package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/view"
)

const maxSheetName = 31

// Format describes one download flavour of the totals.
type Format struct {
	Ext         string
	ContentType string
	Write       func(w io.Writer, totals apiclient.Totals, p apiclient.Period) error
}

// Formats lists the supported downloads keyed by file extension.
var Formats = map[string]Format{
	"xlsx": {
		Ext:         "xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Write:       WriteXLSX,
	},
	"csv": {
		Ext:         "csv",
		ContentType: "text/csv; charset=utf-8",
		Write:       WriteCSV,
	},
}

// SheetName is the worksheet title for p, e.g. "Март 2024".
func SheetName(p apiclient.Period) string {
	name := "Последние 12 месяцев"
	if !p.IsZero() {
		name = fmt.Sprintf("%s %d", cases.Title(view.Locale).String(monthNames[p.Month-1]), p.Year)
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

// FileName is the attachment name of the download with extension ext.
func FileName(p apiclient.Period, ext string) string {
	if p.IsZero() {
		return "rashod-12m." + ext
	}
	return fmt.Sprintf("rashod-%04d-%02d.%s", p.Year, p.Month, ext)
}

// WriteXLSX writes totals as a two-column workbook.
func WriteXLSX(w io.Writer, totals apiclient.Totals, p apiclient.Period) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := SheetName(p)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("stats: sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{Title(p)}); err != nil {
		return fmt.Errorf("stats: title: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"Материал", "Расход"}); err != nil {
		return fmt.Errorf("stats: header: %w", err)
	}
	for i, t := range totals {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{t.Label, t.Value.InexactFloat64()}); err != nil {
			return fmt.Errorf("stats: row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return fmt.Errorf("stats: width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("stats: write: %w", err)
	}
	return nil
}

// WriteCSV writes totals as semicolon separated rows, the layout spreadsheet
// tools expect under a Russian locale.
func WriteCSV(w io.Writer, totals apiclient.Totals, p apiclient.Period) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	defer writer.Flush()

	if err := writer.Write([]string{Title(p)}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Материал", "Расход"}); err != nil {
		return err
	}
	for _, t := range totals {
		if err := writer.Write([]string{t.Label, t.Value.String()}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Export fetches the totals selected by month and writes them in format f.
func Export(ctx context.Context, api API, month string, f Format, w io.Writer) error {
	p := ParseMonth(month)
	totals, err := api.Totals(ctx, p)
	if err != nil {
		return fmt.Errorf("stats: totals: %w", err)
	}
	return f.Write(w, totals, p)
}
