package packing

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harvestlane/veggiebox-backend/internal/orders"
)

const worksheet = "Sheet1"

// Filename derives a download attachment name from the delivery day, e.g.
// "packing-thu-jan-07-2021.xlsx".
func Filename(prefix, day string) string {
	slug := strings.ToLower(strings.TrimSpace(day))
	slug = strings.ReplaceAll(slug, " ", "-")
	if slug == "" {
		slug = "all"
	}
	return fmt.Sprintf("%s-%s.xlsx", prefix, slug)
}

func writeRows(f *excelize.File, rows [][]string) error {
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(worksheet, start, &cells); err != nil {
			return err
		}
	}
	return nil
}

func render(rows [][]string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := writeRows(f, rows); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// RenderPackingSheet writes the packing grid as a workbook.
func RenderPackingSheet(sheet *Sheet, w io.Writer) error {
	rows := [][]string{{sheet.Day}, {}}
	rows = append(rows, sheet.Grid()...)
	return render(rows, w)
}

// RenderPickingList writes the per-product pick counts as a workbook.
func RenderPickingList(day string, picks []PickEntry, w io.Writer) error {
	rows := [][]string{
		{day},
		{"Product", "Standard", "Extra", "Total"},
	}
	for _, entry := range picks {
		rows = append(rows, []string{
			entry.Product,
			strconv.Itoa(entry.Standard),
			strconv.Itoa(entry.Extra),
			strconv.Itoa(entry.Total),
		})
	}
	return render(rows, w)
}

var orderExportHeader = []string{
	"Order Number", "Customer Name", "Address 1", "Address 2", "City", "Zip",
	"Telephone", "Email", "Box Type", "Box Extra Line Items",
	"Box Excluded Line Items", "Delivery Note", "Price",
}

// RenderOrders writes a delivery day's orders as a workbook mirroring the
// CSV import column layout.
func RenderOrders(day string, dayOrders []orders.Order, w io.Writer) error {
	rows := [][]string{{day}, orderExportHeader}
	for _, order := range dayOrders {
		rows = append(rows, []string{
			order.OrderNumber,
			order.Name,
			order.Address1,
			order.Address2,
			order.City,
			order.Zip,
			order.Telephone,
			order.Email,
			order.SKU,
			strings.Join(order.Addons, ", "),
			strings.Join(order.Removed, ", "),
			order.DeliveryNote,
			order.Subtotal,
		})
	}
	return render(rows, w)
}
