package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/harvestlane/veggiebox-backend/internal/delivery"
)

// CSV column headers expected by the bulk order upload.
const (
	colCustomerName = "Customer Name"
	colAddress1     = "Address 1"
	colAddress2     = "Address 2"
	colCity         = "City"
	colZip          = "Zip"
	colTelephone    = "Telephone"
	colEmail        = "Email"
	colBoxType      = "Box Type"
	colExtraItems   = "Box Extra Line Items"
	colExcluded     = "Box Excluded Line Items"
	colNote         = "Delivery Note"
	colPrice        = "Price"
)

// ParseCSV reads a bulk upload into canonical order records. Every row in
// the batch shares the caller-supplied delivery day; identifiers are derived
// from the import start instant plus the row offset, which keeps them unique
// within one run and stable enough for the insert-if-absent store to make
// re-imports a no-op.
func ParseCSV(r io.Reader, day string, startedAt time.Time) ([]Order, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	index := headerIndex(header)
	if _, ok := index[colBoxType]; !ok {
		return nil, fmt.Errorf("csv header missing %q column", colBoxType)
	}

	base := startedAt.Unix()
	var result []Order
	for offset := int64(0); ; offset++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", offset+2, err)
		}
		cell := func(name string) string {
			idx, ok := index[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		if cell(colBoxType) == "" {
			continue
		}

		id := base + offset
		result = append(result, Order{
			ID:           id,
			OrderNumber:  strconv.FormatInt(id, 10),
			SKU:          NormalizeSKU(cell(colBoxType)),
			Delivered:    day,
			Subtotal:     normalizePrice(cell(colPrice)),
			Name:         cell(colCustomerName),
			Address1:     cell(colAddress1),
			Address2:     cell(colAddress2),
			City:         cell(colCity),
			Zip:          cell(colZip),
			Telephone:    cell(colTelephone),
			Email:        cell(colEmail),
			DeliveryNote: cell(colNote),
			Including:    []string{},
			Addons:       splitItemsColumn(cell(colExtraItems)),
			Removed:      splitItemsColumn(cell(colExcluded)),
			Source:       SourceCSV,
		})
	}
	return result, nil
}

// ParseXLSX reads a spreadsheet upload. The sheet carries one column per
// delivery day; only rows with a non-empty cell in the target day's column
// are imported, and that cell holds the box type.
func ParseXLSX(r io.Reader, day string, resolver *delivery.Resolver) ([]Order, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	index := headerIndex(rows[0])
	dayCol, ok := index[day]
	if !ok {
		return nil, fmt.Errorf("sheet has no column for delivery day %q", day)
	}

	dayStart, err := resolver.ParseDay(day)
	if err != nil {
		return nil, fmt.Errorf("parsing target day: %w", err)
	}
	base := dayStart.Unix()

	var result []Order
	for rowIdx, record := range rows[1:] {
		cell := func(name string) string {
			idx, ok := index[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		boxType := ""
		if dayCol < len(record) {
			boxType = strings.TrimSpace(record[dayCol])
		}
		if boxType == "" {
			continue
		}

		id := base + int64(rowIdx)
		result = append(result, Order{
			ID:           id,
			OrderNumber:  strconv.FormatInt(id, 10),
			SKU:          NormalizeSKU(boxType),
			Delivered:    day,
			Subtotal:     normalizePrice(cell(colPrice)),
			Name:         cell(colCustomerName),
			Address1:     cell(colAddress1),
			Address2:     cell(colAddress2),
			City:         cell(colCity),
			Zip:          cell(colZip),
			Telephone:    cell(colTelephone),
			Email:        cell(colEmail),
			DeliveryNote: cell(colNote),
			Including:    []string{},
			Addons:       splitItemsColumn(cell(colExtraItems)),
			Removed:      splitItemsColumn(cell(colExcluded)),
			Source:       SourceXLSX,
		})
	}
	return result, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, exists := index[trimmed]; !exists {
			index[trimmed] = i
		}
	}
	return index
}

// splitItemsColumn splits an item column on commas or newlines, trims each
// entry and rewrites quantity prefixes into the stored form.
func splitItemsColumn(raw string) []string {
	items := []string{}
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, normalizeAddon(trimmed))
		}
	}
	return items
}

// normalizePrice renders prices as fixed two-decimal strings; anything
// unparseable becomes "0.00".
func normalizePrice(raw string) string {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if cleaned == "" {
		return "0.00"
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "0.00"
	}
	return value.StringFixed(2)
}
