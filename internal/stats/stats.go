// Package stats implements the consumption statistics panel and its
// spreadsheet export.
package stats

import (
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/chart"
	"github.com/stockdesk/console/internal/view"
)

// MonthParam is the query and form field carrying the selected month.
const MonthParam = "month"

// API is the slice of the REST client the panel needs.
type API interface {
	Totals(ctx context.Context, p apiclient.Period) (apiclient.Totals, error)
}

var monthNames = [...]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

// MonthOption is one entry of the month selector.
type MonthOption struct {
	Value    string
	Label    string
	Selected bool
}

// MonthLabel renders a month the way the selector shows it, e.g. "март 2024 г.".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d г.", monthNames[month-1], year)
}

// MonthOptions lists the trailing twelve calendar months, current first.
func MonthOptions(now time.Time, selected string) []MonthOption {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]MonthOption, 0, 12)
	for i := 0; i < 12; i++ {
		d := first.AddDate(0, -i, 0)
		value := fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
		out = append(out, MonthOption{Value: value, Label: MonthLabel(d.Year(), d.Month()), Selected: value == selected})
	}
	return out
}

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseMonth reads a YYYY-MM selector value. Anything malformed yields the
// zero Period, meaning the trailing twelve months.
func ParseMonth(value string) apiclient.Period {
	m := monthPattern.FindStringSubmatch(value)
	if m == nil {
		return apiclient.Period{}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if year == 0 || month < 1 || month > 12 {
		return apiclient.Period{}
	}
	return apiclient.Period{Year: year, Month: month}
}

// Title is the chart heading for p.
func Title(p apiclient.Period) string {
	if p.IsZero() {
		return "Расход за последние 12 месяцев"
	}
	return "Расход за " + MonthLabel(p.Year, time.Month(p.Month))
}

// Row is one total of the table under the chart.
type Row struct {
	Label string
	Value string
	Color string
}

// Model is the panel view-model.
type Model struct {
	Month   string
	Options []MonthOption
	Title   string
	Chart   template.HTML
	Rows    []Row
}

// Empty reports a period without any consumption.
func (m Model) Empty() bool {
	return len(m.Rows) == 0
}

// ExportQuery is the query string of the matching spreadsheet download.
func (m Model) ExportQuery() string {
	if m.Month == "" {
		return ""
	}
	return "?" + MonthParam + "=" + m.Month
}

// Build renders totals for period p given the raw selector value.
func Build(totals apiclient.Totals, p apiclient.Period, now time.Time) (Model, error) {
	month := ""
	if !p.IsZero() {
		month = fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
	model := Model{
		Month:   month,
		Options: MonthOptions(now, month),
		Title:   Title(p),
		Rows:    make([]Row, 0, len(totals)),
	}
	if len(totals) == 0 {
		return model, nil
	}
	hues := chart.Hues(len(totals))
	bars := make([]chart.Bar, 0, len(totals))
	for i, t := range totals {
		text := view.FormatQty(t.Value)
		model.Rows = append(model.Rows, Row{Label: t.Label, Value: text, Color: chart.Color(hues[i])})
		bars = append(bars, chart.Bar{Label: t.Label, Value: t.Value.InexactFloat64(), Text: text})
	}
	svg, err := chart.HBars(bars, chart.Opts{Title: model.Title, Description: "Расход материалов"})
	if err != nil {
		return Model{}, fmt.Errorf("stats: chart: %w", err)
	}
	model.Chart = svg
	return model, nil
}

// Load fetches totals for the selector value month.
func Load(ctx context.Context, api API, month string, now time.Time) (Model, error) {
	p := ParseMonth(month)
	totals, err := api.Totals(ctx, p)
	if err != nil {
		return Model{}, fmt.Errorf("stats: totals: %w", err)
	}
	return Build(totals, p, now)
}
