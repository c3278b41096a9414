package packing

import (
	"sort"
	"strconv"
	"strings"
)

// Keyword lists for the fruit/bread split on the packing sheet. Matching is
// a case-insensitive substring check against the product name.
var (
	fruitKeywords = []string{
		"apple", "banana", "orange", "mandarin", "pear", "kiwi",
		"feijoa", "plum", "peach", "nectarine", "berry", "berries",
		"grape", "melon", "avocado", "lemon", "lime", "fruit",
	}
	breadKeywords = []string{
		"bread", "loaf", "sourdough", "bagel", "bun", "ciabatta",
	}
)

func matchesAny(name string, keywords []string) bool {
	lowered := strings.ToLower(name)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// Partition splits product names into fruit, bread and other buckets, each
// sorted. A name matching both lists counts as fruit.
func Partition(names []string) (fruit, bread, other []string) {
	fruit, bread, other = []string{}, []string{}, []string{}
	for _, name := range names {
		switch {
		case matchesAny(name, fruitKeywords):
			fruit = append(fruit, name)
		case matchesAny(name, breadKeywords):
			bread = append(bread, name)
		default:
			other = append(other, name)
		}
	}
	sort.Strings(fruit)
	sort.Strings(bread)
	sort.Strings(other)
	return fruit, bread, other
}

// IsCustomSKU reports whether a box SKU denotes a bespoke box that gets a
// count-only summary row instead of a column on the packing sheet.
func IsCustomSKU(sku string) bool {
	return strings.Contains(strings.ToLower(sku), "custom")
}

// CommonItems computes the set of item names present in every one of the
// given sets. The smallest set seeds the intersection and the rest whittle
// it down; the result comes back sorted.
func CommonItems(sets [][]string) []string {
	if len(sets) == 0 {
		return []string{}
	}

	ordered := make([][]string, len(sets))
	copy(ordered, sets)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) < len(ordered[j]) })

	common := map[string]bool{}
	for _, name := range ordered[0] {
		common[name] = true
	}
	for _, set := range ordered[1:] {
		present := map[string]bool{}
		for _, name := range set {
			present[name] = true
		}
		for name := range common {
			if !present[name] {
				delete(common, name)
			}
		}
	}

	result := make([]string, 0, len(common))
	for name := range common {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Column is one box's packing-sheet column pair: the SKU heading, the order
// count, and the row sequence of item names with blank separators between
// the other/fruit and fruit/bread groups.
type Column struct {
	SKU   string
	Count int
	Items []string
}

// Sheet is the assembled packing report for one delivery day, ready for
// spreadsheet rendering. Rows across columns align positionally, not by
// item name.
type Sheet struct {
	Day         string
	Columns     []Column
	CustomCount int
	TotalBoxes  int
	BreadPicks  []PickEntry
}

// BuildSheet lays the box summaries out into the packing-sheet structure.
// Custom boxes are pulled out of the column layout and reported as a single
// count; the remaining boxes share a common item block followed by the
// other/fruit/bread partition of each box's own items.
func BuildSheet(day string, summaries []BoxSummary, picks []PickEntry) *Sheet {
	sheet := &Sheet{Day: day, Columns: []Column{}, BreadPicks: []PickEntry{}}

	regular := make([]BoxSummary, 0, len(summaries))
	for _, summary := range summaries {
		sheet.TotalBoxes += summary.Count
		if IsCustomSKU(summary.SKU) {
			sheet.CustomCount += summary.Count
			continue
		}
		regular = append(regular, summary)
	}

	sets := make([][]string, 0, len(regular))
	for _, summary := range regular {
		sets = append(sets, summary.Including)
	}
	common := CommonItems(sets)
	commonSet := make(map[string]bool, len(common))
	for _, name := range common {
		commonSet[name] = true
	}

	for _, summary := range regular {
		rest := make([]string, 0, len(summary.Including))
		for _, name := range summary.Including {
			if !commonSet[name] {
				rest = append(rest, name)
			}
		}
		fruit, bread, other := Partition(rest)

		items := make([]string, 0, len(common)+len(other)+len(fruit)+len(bread)+2)
		items = append(items, common...)
		items = append(items, other...)
		items = append(items, "")
		items = append(items, fruit...)
		items = append(items, "")
		items = append(items, bread...)

		sheet.Columns = append(sheet.Columns, Column{
			SKU:   summary.SKU,
			Count: summary.Count,
			Items: items,
		})
	}

	for _, entry := range picks {
		if matchesAny(entry.Product, breadKeywords) && !matchesAny(entry.Product, fruitKeywords) {
			sheet.BreadPicks = append(sheet.BreadPicks, entry)
		}
	}
	return sheet
}

// Grid flattens the sheet into spreadsheet rows: a heading row of SKU/count
// pairs, the positionally aligned item rows, summary rows and the bread
// subtotal table.
func (s *Sheet) Grid() [][]string {
	rows := [][]string{}

	header := []string{}
	maxItems := 0
	for _, column := range s.Columns {
		header = append(header, column.SKU, strconv.Itoa(column.Count))
		if len(column.Items) > maxItems {
			maxItems = len(column.Items)
		}
	}
	rows = append(rows, header)

	for i := 0; i < maxItems; i++ {
		row := []string{}
		for _, column := range s.Columns {
			item := ""
			count := ""
			if i < len(column.Items) {
				item = column.Items[i]
				if item != "" {
					count = strconv.Itoa(column.Count)
				}
			}
			row = append(row, item, count)
		}
		rows = append(rows, row)
	}

	rows = append(rows,
		[]string{"Total Boxes", strconv.Itoa(s.TotalBoxes)},
		[]string{"Custom Boxes", strconv.Itoa(s.CustomCount)},
		[]string{},
	)
	for _, entry := range s.BreadPicks {
		rows = append(rows, []string{entry.Product, strconv.Itoa(entry.Total)})
	}
	return rows
}

