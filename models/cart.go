package models

import "time"

// CartLine is one cart entry, keyed by product, size and color.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Size      string  `json:"size"`
	Color     string  `json:"color,omitempty"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	// MaxStock is the variant stock seen when the line was last touched.
	MaxStock int `json:"maxStock"`
}

// Key identifies the line within a cart.
func (l CartLine) Key() string {
	return CartKey(l.ProductID, l.Size, l.Color)
}

// CartKey is also the key of the cartData snapshot on the user document.
func CartKey(productID, size, color string) string {
	return productID + "|" + size + "|" + color
}

// WishlistItem is a product saved for later, without cart specific fields.
type WishlistItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
}

type Cart struct {
	UserID    string         `json:"userId"`
	Lines     []CartLine     `json:"lines"`
	Wishlist  []WishlistItem `json:"wishlist"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CartTotals are derived after every mutation and never stored.
type CartTotals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`
	ItemCount    int     `json:"itemCount"`
}

// CartView is the cart as returned to clients.
type CartView struct {
	Cart
	CartTotals
	Notice string `json:"notice,omitempty"`
}

// StockIssue reports a cart line that no longer fits current stock.
type StockIssue struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}
