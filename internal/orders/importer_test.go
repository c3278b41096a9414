package orders

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const csvHeader = "Customer Name,Address 1,Address 2,City,Zip,Telephone,Email,Box Type,Box Extra Line Items,Box Excluded Line Items,Delivery Note,Price"

func TestParseCSVCustomBoxRow(t *testing.T) {
	input := csvHeader + "\n" +
		`Jo Bloggs,1 Orchard Lane,,Auckland,1010,021 555 123,jo@example.com,Custom box,3x Baby Kale,Beetroot,leave at gate,45`

	startedAt := time.Date(2021, time.January, 5, 8, 0, 0, 0, time.UTC)
	batch, err := ParseCSV(strings.NewReader(input), "Thu Jan 07 2021", startedAt)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	order := batch[0]
	assert.Equal(t, "Custom Box", order.SKU)
	assert.Equal(t, []string{"Baby Kale (3)"}, order.Addons)
	assert.Equal(t, []string{"Beetroot"}, order.Removed)
	assert.Equal(t, "45.00", order.Subtotal)
	assert.Equal(t, "Thu Jan 07 2021", order.Delivered)
	assert.Equal(t, startedAt.Unix(), order.ID)
	assert.Equal(t, SourceCSV, order.Source)
}

func TestParseCSVSequentialIdentifiers(t *testing.T) {
	input := csvHeader + "\n" +
		"A,,,,,,a@x.com,Medium Box,,,,30\n" +
		"B,,,,,,b@x.com,Large Box,,,,40\n"

	startedAt := time.Unix(1609890000, 0)
	batch, err := ParseCSV(strings.NewReader(input), "Thu Jan 07 2021", startedAt)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, batch[0].ID+1, batch[1].ID)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
}

func TestParseCSVSkipsRowsWithoutBoxType(t *testing.T) {
	input := csvHeader + "\n" +
		"A,,,,,,a@x.com,,,,,30\n" +
		"B,,,,,,b@x.com,Large Box,,,,40\n"

	batch, err := ParseCSV(strings.NewReader(input), "Thu Jan 07 2021", time.Now())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "Large Box", batch[0].SKU)
}

func TestParseCSVSplitsItemsOnNewlines(t *testing.T) {
	input := csvHeader + "\n" +
		"A,,,,,,a@x.com,Medium Box,\"2x Eggs\nSourdough\",,,30\n"

	batch, err := ParseCSV(strings.NewReader(input), "Thu Jan 07 2021", time.Now())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, []string{"Eggs (2)", "Sourdough"}, batch[0].Addons)
}

func TestParseCSVRejectsMissingBoxTypeColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Name,Price\nA,30\n"), "Thu Jan 07 2021", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Box Type")
}

func buildTestSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

func TestParseXLSXMatchesTargetDayColumn(t *testing.T) {
	buf := buildTestSheet(t, [][]any{
		{"Customer Name", "Email", "Thu Jan 07 2021", "Sat Jan 09 2021"},
		{"Jo Bloggs", "jo@example.com", "Medium Box", ""},
		{"Sam Green", "sam@example.com", "", "Large Box"},
		{"Ada Brown", "ada@example.com", "Custom box", ""},
	})

	batch, err := ParseXLSX(buf, "Thu Jan 07 2021", testResolver(t))
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, "Medium Box", batch[0].SKU)
	assert.Equal(t, "Jo Bloggs", batch[0].Name)
	assert.Equal(t, "Custom Box", batch[1].SKU)
	assert.Equal(t, SourceXLSX, batch[0].Source)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
}

func TestParseXLSXUnknownDayColumn(t *testing.T) {
	buf := buildTestSheet(t, [][]any{
		{"Customer Name", "Thu Jan 07 2021"},
		{"Jo", "Medium Box"},
	})

	_, err := ParseXLSX(buf, "Fri Jan 08 2021", testResolver(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column")
}

func TestNormalizePrice(t *testing.T) {
	assert.Equal(t, "45.00", normalizePrice("45"))
	assert.Equal(t, "45.50", normalizePrice("$45.5"))
	assert.Equal(t, "0.00", normalizePrice(""))
	assert.Equal(t, "0.00", normalizePrice("n/a"))
}
