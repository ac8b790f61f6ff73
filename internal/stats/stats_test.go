package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stockdesk/console/internal/apiclient"
)

type fakeAPI struct {
	periods []apiclient.Period
	totals  apiclient.Totals
}

func (f *fakeAPI) Totals(_ context.Context, p apiclient.Period) (apiclient.Totals, error) {
	f.periods = append(f.periods, p)
	return f.totals, nil
}

func sample() apiclient.Totals {
	return apiclient.Totals{
		{Label: "Плёнка", Value: decimal.RequireFromString("12.5")},
		{Label: "Коробка", Value: decimal.NewFromInt(3)},
		{Label: "Скотч", Value: decimal.NewFromInt(1)},
		{Label: "Лента", Value: decimal.NewFromInt(2)},
	}
}

func TestMonthOptionsTrailingYear(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	opts := MonthOptions(now, "2023-12")

	require.Len(t, opts, 12)
	assert.Equal(t, MonthOption{Value: "2024-03", Label: "март 2024 г."}, opts[0])
	assert.Equal(t, "2023-04", opts[11].Value)
	assert.True(t, opts[3].Selected)
	assert.Equal(t, "декабрь 2023 г.", opts[3].Label)
}

func TestParseMonth(t *testing.T) {
	assert.Equal(t, apiclient.Period{Year: 2024, Month: 3}, ParseMonth("2024-03"))
	assert.Equal(t, "month=3&year=2024", ParseMonth("2024-03").Query().Encode())
	for _, bad := range []string{"", "2024-13", "2024-3", "march", "2024-00"} {
		assert.True(t, ParseMonth(bad).IsZero(), bad)
	}
}

func TestLoadQueriesPeriod(t *testing.T) {
	api := &fakeAPI{totals: sample()}
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	model, err := Load(context.Background(), api, "", now)
	require.NoError(t, err)
	assert.Equal(t, "Расход за последние 12 месяцев", model.Title)
	assert.Empty(t, model.ExportQuery())

	model, err = Load(context.Background(), api, "2024-03", now)
	require.NoError(t, err)
	assert.Equal(t, "Расход за март 2024 г.", model.Title)
	assert.Equal(t, "?month=2024-03", model.ExportQuery())

	assert.Equal(t, []apiclient.Period{{}, {Year: 2024, Month: 3}}, api.periods)
}

func TestBuildColorsAndOrder(t *testing.T) {
	model, err := Build(sample(), apiclient.Period{}, time.Now())
	require.NoError(t, err)

	require.Len(t, model.Rows, 4)
	labels := []string{model.Rows[0].Label, model.Rows[1].Label, model.Rows[2].Label, model.Rows[3].Label}
	assert.Equal(t, []string{"Плёнка", "Коробка", "Скотч", "Лента"}, labels)
	assert.Equal(t, "hsl(0, 50%, 70%)", model.Rows[0].Color)
	assert.Equal(t, "hsl(90, 50%, 70%)", model.Rows[1].Color)
	assert.Equal(t, "hsl(270, 50%, 70%)", model.Rows[3].Color)
	assert.True(t, strings.HasPrefix(string(model.Chart), "<svg"))

	empty, err := Build(nil, apiclient.Period{}, time.Now())
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Chart)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	p := apiclient.Period{Year: 2024, Month: 3}
	require.NoError(t, WriteXLSX(&buf, sample(), p))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "Март 2024", SheetName(p))
	rows, err := f.GetRows("Март 2024")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Материал", "Расход"}, rows[1])
	assert.Equal(t, []string{"Плёнка", "12.5"}, rows[2])
	assert.Equal(t, "rashod-2024-03.xlsx", FileName(p, "xlsx"))
	assert.Equal(t, "rashod-12m.csv", FileName(apiclient.Period{}, "csv"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), apiclient.Period{Year: 2024, Month: 3}))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"Материал", "Расход"}, records[1])
	assert.Equal(t, []string{"Плёнка", "12.5"}, records[2])
}
