package dto

// ApproveOrderRequest carries delivery choices for an approval.
type ApproveOrderRequest struct {
	MaxDevices      int    `json:"maxDevices" binding:"omitempty,min=1,max=10"`
	DeliveryMethod  string `json:"deliveryMethod" binding:"omitempty,deliverymethod"`
	DeliveryContact string `json:"deliveryContact" binding:"max=255"`
	AdminNotes      string `json:"adminNotes" binding:"max=1000"`
}

// RejectOrderRequest carries the reason shown to the customer.
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// DashboardResponse holds admin console counters.
type DashboardResponse struct {
	TotalUsers       int   `json:"totalUsers"`
	TotalOrders      int   `json:"totalOrders"`
	PendingOrders    int   `json:"pendingOrders"`
	ProcessingOrders int   `json:"processingOrders"`
	CompletedOrders  int   `json:"completedOrders"`
	RejectedOrders   int   `json:"rejectedOrders"`
	ExpiredOrders    int   `json:"expiredOrders"`
	TotalLicenses    int   `json:"totalLicenses"`
	ActiveLicenses   int   `json:"activeLicenses"`
	MonthlyRevenue   int64 `json:"monthlyRevenue"`
}
