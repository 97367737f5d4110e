package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product categories accepted by the catalog.
const (
	CategoryMen         = "men"
	CategoryWomen       = "women"
	CategoryKids        = "kids"
	CategoryAccessories = "accessories"
)

var Categories = []string{CategoryMen, CategoryWomen, CategoryKids, CategoryAccessories}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Variant is one SKU of a product, typically a size.
type Variant struct {
	SKU              string  `bson:"sku" json:"sku" binding:"required"`
	Barcode          string  `bson:"barcode,omitempty" json:"barcode,omitempty"`
	RetailPrice      float64 `bson:"retail_price" json:"retail_price" binding:"gte=0"`
	Discount         float64 `bson:"discount" json:"discount" binding:"gte=0"`
	FilterValue      string  `bson:"filter_value" json:"filter_value"`
	Stock            int     `bson:"stock" json:"stock" binding:"gte=0"`
	MinOrderQuantity int     `bson:"min_order_quantity" json:"min_order_quantity"`
}

// Price is the effective unit price: retail minus discount, never negative.
func (v Variant) Price() float64 {
	p := v.RetailPrice - v.Discount
	if p < 0 {
		return 0
	}
	return p
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Fabric      string             `bson:"fabric,omitempty" json:"fabric,omitempty"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	Variants    []Variant          `bson:"variants" json:"variants"`
	Images      []string           `bson:"images" json:"images"`
	Bestseller  bool               `bson:"bestseller" json:"bestseller"`
	Slug        string             `bson:"slug" json:"slug"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VariantBySKU finds a variant by SKU.
func (p *Product) VariantBySKU(sku string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// VariantBySize finds a variant by its filter value. A product with a single
// variant matches any size.
func (p *Product) VariantBySize(size string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].FilterValue == size {
			return &p.Variants[i], true
		}
	}
	if len(p.Variants) == 1 && size == "" {
		return &p.Variants[0], true
	}
	return nil, false
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category   string
	Bestseller *bool
}
