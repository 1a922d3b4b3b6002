package stock

import "time"

// Stock is one company's on-hand quantity of a product. Companies share
// the product catalog but hold independent stock rows.
type Stock struct {
	ProductID int64
	CompanyID int64
	Quantity  float64
	UpdatedAt time.Time
}
