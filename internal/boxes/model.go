package boxes

import "go.mongodb.org/mongo-driver/bson/primitive"

// CoreBoxDay is the delivery-day sentinel for the single reusable template
// box whose product lists seed newly added boxes.
const CoreBoxDay = "Core Box"

// Product list names accepted by the add/remove product operations.
const (
	ListIncluded = "included"
	ListAddOn    = "addon"
)

// Product is one sub-document inside a box's included or add-on list.
type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShopifyTitle     string             `bson:"shopify_title" json:"shopify_title"`
	ShopifyHandle    string             `bson:"shopify_handle" json:"shopify_handle"`
	ShopifyProductID int64              `bson:"shopify_product_id" json:"shopify_product_id"`
	ShopifyVariantID int64              `bson:"shopify_variant_id" json:"shopify_variant_id"`
	// Price in minor currency units.
	ShopifyPrice int `bson:"shopify_price" json:"shopify_price"`
}

// Box is one sellable box product for one delivery day.
type Box struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Delivered        string             `bson:"delivered" json:"delivered"`
	ShopifyTitle     string             `bson:"shopify_title" json:"shopify_title"`
	ShopifyHandle    string             `bson:"shopify_handle" json:"shopify_handle"`
	ShopifySKU       string             `bson:"shopify_sku" json:"shopify_sku"`
	ShopifyProductID int64              `bson:"shopify_product_id" json:"shopify_product_id"`
	ShopifyVariantID int64              `bson:"shopify_variant_id" json:"shopify_variant_id"`
	// Price in minor currency units.
	ShopifyPrice     int       `bson:"shopify_price" json:"shopify_price"`
	IncludedProducts []Product `bson:"included_products" json:"included_products"`
	AddOnProducts    []Product `bson:"add_on_products" json:"add_on_products"`
	Active           bool      `bson:"active" json:"active"`
}

// IncludedNames returns the included product titles in list order.
func (b Box) IncludedNames() []string {
	names := make([]string, 0, len(b.IncludedProducts))
	for _, p := range b.IncludedProducts {
		names = append(names, p.ShopifyTitle)
	}
	return names
}
