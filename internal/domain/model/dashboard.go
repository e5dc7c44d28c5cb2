package model

// DashboardStats aggregates admin console counters.
type DashboardStats struct {
	TotalUsers       int
	TotalOrders      int
	PendingOrders    int
	ProcessingOrders int
	CompletedOrders  int
	RejectedOrders   int
	ExpiredOrders    int
	TotalLicenses    int
	ActiveLicenses   int
	MonthlyRevenue   int64
}
