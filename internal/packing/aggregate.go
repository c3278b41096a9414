package packing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/harvestlane/veggiebox-backend/internal/boxes"
	"github.com/harvestlane/veggiebox-backend/internal/orders"
)

// BoxSummary is one active box for a delivery day together with the orders
// that matched it. Extras maps product name to the total add-on quantity
// across all matched orders.
type BoxSummary struct {
	SKU       string
	Count     int
	Including []string
	Extras    map[string]int
}

// PickEntry is a per-product pick count for warehouse staff.
type PickEntry struct {
	Product  string `json:"product"`
	Standard int    `json:"standard"`
	Extra    int    `json:"extra"`
	Total    int    `json:"total"`
}

var addonQtyPattern = regexp.MustCompile(`^(.+?)\s*\((\d+)\)$`)

// addonQuantity splits an add-on entry of the form "Baby Kale (3)" into its
// product name and quantity. Entries without a quantity suffix count as one.
func addonQuantity(entry string) (string, int) {
	if match := addonQtyPattern.FindStringSubmatch(entry); match != nil {
		qty, err := strconv.Atoi(match[2])
		if err == nil && qty > 0 {
			return strings.TrimSpace(match[1]), qty
		}
	}
	return strings.TrimSpace(entry), 1
}

// Summarize matches orders to boxes by SKU and folds each order's add-ons
// into the box's extras map. Boxes with no matched orders are dropped.
func Summarize(dayBoxes []boxes.Box, dayOrders []orders.Order) []BoxSummary {
	bySKU := make(map[string]*BoxSummary, len(dayBoxes))
	ordered := make([]string, 0, len(dayBoxes))
	for _, box := range dayBoxes {
		if !box.Active {
			continue
		}
		if _, ok := bySKU[box.ShopifySKU]; ok {
			continue
		}
		bySKU[box.ShopifySKU] = &BoxSummary{
			SKU:       box.ShopifySKU,
			Including: box.IncludedNames(),
			Extras:    map[string]int{},
		}
		ordered = append(ordered, box.ShopifySKU)
	}

	for _, order := range dayOrders {
		summary, ok := bySKU[order.SKU]
		if !ok {
			continue
		}
		summary.Count++
		for _, addon := range order.Addons {
			name, qty := addonQuantity(addon)
			if name == "" {
				continue
			}
			summary.Extras[name] += qty
		}
	}

	result := make([]BoxSummary, 0, len(ordered))
	for _, sku := range ordered {
		if bySKU[sku].Count == 0 {
			continue
		}
		result = append(result, *bySKU[sku])
	}
	return result
}

// Aggregate builds the per-product picking list from box summaries. Every
// included product's standard count goes up by the box's order count, and
// each extras entry adds to the product's extra count. Entries come back
// sorted by product name.
func Aggregate(summaries []BoxSummary) []PickEntry {
	standard := map[string]int{}
	extra := map[string]int{}
	for _, summary := range summaries {
		for _, product := range summary.Including {
			standard[product] += summary.Count
		}
		for product, qty := range summary.Extras {
			extra[product] += qty
		}
	}

	names := make([]string, 0, len(standard)+len(extra))
	seen := map[string]bool{}
	for name := range standard {
		names = append(names, name)
		seen[name] = true
	}
	for name := range extra {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]PickEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, PickEntry{
			Product:  name,
			Standard: standard[name],
			Extra:    extra[name],
			Total:    standard[name] + extra[name],
		})
	}
	return entries
}
