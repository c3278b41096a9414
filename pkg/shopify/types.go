package shopify

// NoteAttribute is a single key/value custom attribute on an order.
type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
}

type Customer struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Phone          string   `json:"phone"`
	DefaultAddress *Address `json:"default_address"`
}

type LineItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	VariantID int64           `json:"variant_id"`
	Title     string          `json:"title"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     string          `json:"price"`
	Props     []NoteAttribute `json:"properties"`
}

// Order is the platform's admin REST order payload, reduced to the fields
// the ingestion pipeline reads.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     int64           `json:"order_number"`
	Email           string          `json:"email"`
	Note            string          `json:"note"`
	Tags            string          `json:"tags"`
	SubtotalPrice   string          `json:"subtotal_price"`
	NoteAttributes  []NoteAttribute `json:"note_attributes"`
	Customer        *Customer       `json:"customer"`
	ShippingAddress *Address        `json:"shipping_address"`
	LineItems       []LineItem      `json:"line_items"`
}

type Variant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
}

type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Variants []Variant `json:"variants"`
}

// OrderSummary is the shape returned by the GraphQL order search.
type OrderSummary struct {
	GID               string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	CreatedAt         string `json:"created_at"`
	Tags              string `json:"tags"`
	FulfillmentStatus string `json:"fulfillment_status"`
	TotalPrice        string `json:"total_price"`
}

// OrderDetail is the expanded shape returned by the GraphQL order lookup.
type OrderDetail struct {
	OrderSummary
	Note      string            `json:"note"`
	LineItems []OrderDetailLine `json:"line_items"`
}

type OrderDetailLine struct {
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}
