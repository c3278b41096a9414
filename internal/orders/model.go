package orders

// Source tags identify the system an order record arrived from.
const (
	SourceWebhook = "shopify"
	SourceCSV     = "csv"
	SourceXLSX    = "xlsx"
)

// Order is one purchase event, keyed by the externally assigned id. Every
// field is always populated: absent source data becomes an empty string or
// empty list, never a missing key.
type Order struct {
	ID           int64    `bson:"_id" json:"id"`
	OrderNumber  string   `bson:"order_number" json:"order_number"`
	SKU          string   `bson:"sku" json:"sku"`
	Delivered    string   `bson:"delivered" json:"delivered"`
	Subtotal     string   `bson:"subtotal" json:"subtotal"`
	Name         string   `bson:"name" json:"name"`
	Address1     string   `bson:"address1" json:"address1"`
	Address2     string   `bson:"address2" json:"address2"`
	City         string   `bson:"city" json:"city"`
	Zip          string   `bson:"zip" json:"zip"`
	Telephone    string   `bson:"telephone" json:"telephone"`
	Email        string   `bson:"email" json:"email"`
	DeliveryNote string   `bson:"delivery_note" json:"delivery_note"`
	Including    []string `bson:"including" json:"including"`
	Addons       []string `bson:"addons" json:"addons"`
	Removed      []string `bson:"removed" json:"removed"`
	Source       string   `bson:"source" json:"source"`
}
