package packing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCommonItemsIsSubsetOfEverySet(t *testing.T) {
	sets := [][]string{
		{"Carrots", "Potatoes", "Apples", "Bread"},
		{"Carrots", "Potatoes", "Silverbeet"},
		{"Potatoes", "Carrots", "Apples", "Honey", "Kale"},
	}

	common := CommonItems(sets)
	assert.Equal(t, []string{"Carrots", "Potatoes"}, common)

	for _, set := range sets {
		present := map[string]bool{}
		for _, name := range set {
			present[name] = true
		}
		for _, name := range common {
			assert.True(t, present[name], "common item %q missing from a set", name)
		}
	}
}

func TestCommonItemsEmptyInput(t *testing.T) {
	assert.Empty(t, CommonItems(nil))
	assert.Empty(t, CommonItems([][]string{{"Carrots"}, {}}))
}

func TestPartitionBuckets(t *testing.T) {
	fruit, bread, other := Partition([]string{
		"Granny Smith Apples", "Sourdough Loaf", "Carrots", "Kiwi Fruit", "Vogel Bread",
	})
	assert.Equal(t, []string{"Granny Smith Apples", "Kiwi Fruit"}, fruit)
	assert.Equal(t, []string{"Sourdough Loaf", "Vogel Bread"}, bread)
	assert.Equal(t, []string{"Carrots"}, other)
}

func TestIsCustomSKU(t *testing.T) {
	assert.True(t, IsCustomSKU("Custom Box"))
	assert.True(t, IsCustomSKU("custom veggie box"))
	assert.False(t, IsCustomSKU("Medium Box"))
}

func TestBuildSheetExcludesCustomBoxesFromColumns(t *testing.T) {
	summaries := []BoxSummary{
		{SKU: "Medium Box", Count: 3, Including: []string{"Carrots", "Potatoes", "Apples"}},
		{SKU: "Large Box", Count: 2, Including: []string{"Carrots", "Potatoes", "Bread"}},
		{SKU: "Custom Box", Count: 4, Including: []string{}},
	}

	sheet := BuildSheet("Thu Jan 07 2021", summaries, Aggregate(summaries))

	require.Len(t, sheet.Columns, 2)
	assert.Equal(t, 4, sheet.CustomCount)
	assert.Equal(t, 9, sheet.TotalBoxes)
}

func TestBuildSheetCommonDisjointFromPartitions(t *testing.T) {
	summaries := []BoxSummary{
		{SKU: "Medium Box", Count: 1, Including: []string{"Carrots", "Potatoes", "Apples"}},
		{SKU: "Large Box", Count: 1, Including: []string{"Carrots", "Potatoes", "Sourdough Loaf"}},
	}

	sheet := BuildSheet("Thu Jan 07 2021", summaries, nil)

	common := CommonItems([][]string{summaries[0].Including, summaries[1].Including})
	require.Equal(t, []string{"Carrots", "Potatoes"}, common)

	for _, column := range sheet.Columns {
		seen := map[string]int{}
		for _, item := range column.Items {
			if item != "" {
				seen[item]++
			}
		}
		for _, name := range common {
			assert.Equal(t, 1, seen[name], "common item %q should appear exactly once in %s", name, column.SKU)
		}
	}
}

func TestBuildSheetColumnRowSequence(t *testing.T) {
	summaries := []BoxSummary{
		{SKU: "Medium Box", Count: 2, Including: []string{"Carrots", "Apples", "Sourdough Loaf", "Silverbeet"}},
		{SKU: "Large Box", Count: 1, Including: []string{"Carrots", "Kale"}},
	}

	sheet := BuildSheet("Thu Jan 07 2021", summaries, nil)
	require.Len(t, sheet.Columns, 2)

	// common, other, blank, fruit, blank, bread
	assert.Equal(t,
		[]string{"Carrots", "Silverbeet", "", "Apples", "", "Sourdough Loaf"},
		sheet.Columns[0].Items)
	assert.Equal(t,
		[]string{"Carrots", "Kale", "", ""},
		sheet.Columns[1].Items)
}

func TestBuildSheetBreadSubtotal(t *testing.T) {
	picks := []PickEntry{
		{Product: "Sourdough Loaf", Total: 5},
		{Product: "Carrots", Total: 9},
		{Product: "Banana Bread", Total: 2},
	}
	sheet := BuildSheet("Thu Jan 07 2021", nil, picks)

	require.Len(t, sheet.BreadPicks, 1)
	assert.Equal(t, "Sourdough Loaf", sheet.BreadPicks[0].Product)
}

func TestGridAlignsRowsPositionally(t *testing.T) {
	summaries := []BoxSummary{
		{SKU: "Medium Box", Count: 2, Including: []string{"Carrots", "Silverbeet"}},
		{SKU: "Large Box", Count: 1, Including: []string{"Carrots"}},
	}

	rows := BuildSheet("Thu Jan 07 2021", summaries, nil).Grid()

	assert.Equal(t, []string{"Medium Box", "2", "Large Box", "1"}, rows[0])
	assert.Equal(t, []string{"Carrots", "2", "Carrots", "1"}, rows[1])
	assert.Equal(t, []string{"Silverbeet", "2", "", ""}, rows[2])

	var total, custom []string
	for _, row := range rows {
		if len(row) >= 2 && row[0] == "Total Boxes" {
			total = row
		}
		if len(row) >= 2 && row[0] == "Custom Boxes" {
			custom = row
		}
	}
	assert.Equal(t, []string{"Total Boxes", "3"}, total)
	assert.Equal(t, []string{"Custom Boxes", "0"}, custom)
}

func TestRenderPackingSheetProducesWorkbook(t *testing.T) {
	summaries := []BoxSummary{
		{SKU: "Medium Box", Count: 2, Including: []string{"Carrots"}},
	}
	sheet := BuildSheet("Thu Jan 07 2021", summaries, Aggregate(summaries))

	var buf bytes.Buffer
	require.NoError(t, RenderPackingSheet(sheet, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	day, err := f.GetCellValue(worksheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Thu Jan 07 2021", day)

	sku, err := f.GetCellValue(worksheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Medium Box", sku)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "packing-thu-jan-07-2021.xlsx", Filename("packing", "Thu Jan 07 2021"))
	assert.Equal(t, "orders-all.xlsx", Filename("orders", ""))
}
