package models

type LowStockVariant struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}

type DashboardStats struct {
	TotalOrders        int               `json:"totalOrders"`
	TotalRevenue       float64           `json:"totalRevenue"`
	OrdersByStatus     map[string]int    `json:"ordersByStatus"`
	TotalProducts      int               `json:"totalProducts"`
	LowStockVariants   []LowStockVariant `json:"lowStockVariants"`
	RecentOrders       []Order           `json:"recentOrders"`
	PendingFulfillment int64             `json:"pendingFulfillment"`
}
