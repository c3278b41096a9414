package orders

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harvestlane/veggiebox-backend/internal/delivery"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

// Custom-attribute keys the storefront writes onto platform orders.
const (
	attrDeliveryDate = "Delivery Date"
	attrIncluding    = "Including"
	attrAddons       = "Add on Items"
	attrRemoved      = "Removed Items"
)

// skuAliases maps variant names the storefront has used historically onto
// the canonical box names the warehouse works with.
var skuAliases = map[string]string{
	"Custom box":        "Custom Box",
	"Veggie Family box": "Family Box",
}

// NormalizeSKU maps known alias variant names to the canonical box name.
func NormalizeSKU(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := skuAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

// FromPlatform converts a platform order payload into the canonical record.
func FromPlatform(src shopify.Order, resolver *delivery.Resolver) Order {
	addr := platformAddress(src)

	name := strings.TrimSpace(addr.Name)
	if name == "" && src.Customer != nil {
		name = strings.TrimSpace(src.Customer.FirstName + " " + src.Customer.LastName)
	}

	email := src.Email
	if email == "" && src.Customer != nil {
		email = src.Customer.Email
	}
	phone := addr.Phone
	if phone == "" && src.Customer != nil {
		phone = src.Customer.Phone
	}

	sku := ""
	if len(src.LineItems) > 0 {
		item := src.LineItems[0]
		if item.SKU != "" {
			sku = NormalizeSKU(item.SKU)
		} else {
			sku = NormalizeSKU(item.Title)
		}
	}

	return Order{
		ID:           src.ID,
		OrderNumber:  strconv.FormatInt(src.OrderNumber, 10),
		SKU:          sku,
		Delivered:    resolveDeliveryAttribute(src.NoteAttributes, resolver),
		Subtotal:     src.SubtotalPrice,
		Name:         name,
		Address1:     addr.Address1,
		Address2:     addr.Address2,
		City:         addr.City,
		Zip:          addr.Zip,
		Telephone:    phone,
		Email:        email,
		DeliveryNote: src.Note,
		Including:    splitList(attributeValue(src.NoteAttributes, attrIncluding)),
		Addons:       splitList(attributeValue(src.NoteAttributes, attrAddons)),
		Removed:      splitList(attributeValue(src.NoteAttributes, attrRemoved)),
		Source:       SourceWebhook,
	}
}

func platformAddress(src shopify.Order) shopify.Address {
	if src.ShippingAddress != nil {
		return *src.ShippingAddress
	}
	if src.Customer != nil && src.Customer.DefaultAddress != nil {
		return *src.Customer.DefaultAddress
	}
	return shopify.Address{}
}

func attributeValue(attrs []shopify.NoteAttribute, name string) string {
	for _, attr := range attrs {
		if attr.Name == name {
			return strings.TrimSpace(attr.Value)
		}
	}
	return ""
}

func resolveDeliveryAttribute(attrs []shopify.NoteAttribute, resolver *delivery.Resolver) string {
	raw := attributeValue(attrs, attrDeliveryDate)
	if raw == "" {
		return delivery.NoDeliveryDate
	}
	// The storefront has written both epoch timestamps and preformatted day
	// strings over the years; only the former needs resolving.
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return resolver.DayFromUnix(raw)
	}
	return raw
}

// splitList turns a comma separated attribute string into trimmed non-empty
// items. A nil-free empty slice comes back for blank input.
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

var addonCountPattern = regexp.MustCompile(`(?i)^(\d+)\s*x\s*(.+)$`)

// normalizeAddon rewrites quantity-prefixed addon entries ("3x Baby Kale")
// into the stored "Baby Kale (3)" form. Bare names pass through unchanged.
func normalizeAddon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	match := addonCountPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return trimmed
	}
	return strings.TrimSpace(match[2]) + " (" + match[1] + ")"
}
