package models

// ProductDetails holds the fields we surface from a product lookup.
// Rating and ShippingCost are optional and stay nil when the API omits
// them; a zero value and an absent value render differently.
type ProductDetails struct {
	ProductID     string
	Title         string
	Price         float64
	OriginalPrice *float64
	Rating        *float64
	ShippingCost  *float64
}

// HasDiscount reports whether an original price is present. The API
// client only sets OriginalPrice when it is strictly greater than Price.
func (p *ProductDetails) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}
