package handlers

import (
	"strconv"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     strconv.FormatInt(u.ID, 10),
		Email:  u.Email,
		Name:   u.Name,
		Phone:  u.Phone,
		Role:   string(u.Role),
		Avatar: u.Avatar,
	}
}

func toPackageResponse(p model.Package) dto.PackageResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return dto.PackageResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		Description:     p.Description,
		DurationMonths:  p.DurationMonths,
		OriginalPrice:   p.OriginalPrice,
		SalePrice:       p.SalePrice,
		DiscountPercent: p.DiscountPercent,
		Features:        features,
		MaxDevices:      p.MaxDevices,
		IsPopular:       p.Popular,
		IsActive:        p.Active,
		SortOrder:       p.SortOrder,
	}
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          strconv.FormatInt(o.UserID, 10),
		PackageID:       o.PackageID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		PaymentMethod:   string(o.PaymentMethod),
		TransferContent: o.TransferContent,
		Status:          string(o.Status),
		StatusLabel:     o.Status.Label(),
		UserConfirmedAt: o.UserConfirmedAt,
		ApprovedAt:      o.ApprovedAt,
		RejectedAt:      o.RejectedAt,
		RejectionReason: o.RejectionReason,
		LicenseID:       o.LicenseID,
		MaxDevices:      o.MaxDevices,
		DeliveryMethod:  string(o.DeliveryMethod),
		DeliveryContact: o.DeliveryContact,
		DeliveredAt:     o.DeliveredAt,
		AdminNotes:      o.AdminNotes,
		ExpiresAt:       o.ExpiresAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Package:         dto.OrderPackage{Name: o.PackageName, DurationMonths: o.DurationMonths},
	}
	if o.UserEmail != "" {
		resp.User = &dto.OrderUser{ID: resp.UserID, Name: o.UserName, Email: o.UserEmail}
	}
	if o.LicenseKey != "" {
		resp.License = &dto.OrderLicense{LicenseKey: o.LicenseKey, EndDate: o.LicenseEndsAt}
	}
	return resp
}

func toPaymentResponse(p model.PaymentInstructions) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		QRCode: p.QRCodeURL,
		BankInfo: dto.BankInfo{
			BankName:      p.Bank.BankName,
			AccountNumber: p.Bank.AccountNumber,
			AccountName:   p.Bank.AccountName,
		},
		Amount:          p.Amount,
		TransferContent: p.TransferContent,
		VietQRURL:       p.QRCodeURL,
	}
}

func toOrderList(list *model.OrderList) dto.OrderListResponse {
	orders := make([]dto.OrderResponse, 0, len(list.Orders))
	for i := range list.Orders {
		orders = append(orders, toOrderResponse(&list.Orders[i]))
	}
	return dto.OrderListResponse{
		Orders: orders,
		Pagination: dto.Pagination{
			Total:      list.Total,
			Page:       list.Page,
			Limit:      list.Limit,
			TotalPages: list.TotalPages(),
		},
	}
}

func toDashboardResponse(s *model.DashboardStats) dto.DashboardResponse {
	return dto.DashboardResponse{
		TotalUsers:       s.TotalUsers,
		TotalOrders:      s.TotalOrders,
		PendingOrders:    s.PendingOrders,
		ProcessingOrders: s.ProcessingOrders,
		CompletedOrders:  s.CompletedOrders,
		RejectedOrders:   s.RejectedOrders,
		ExpiredOrders:    s.ExpiredOrders,
		TotalLicenses:    s.TotalLicenses,
		ActiveLicenses:   s.ActiveLicenses,
		MonthlyRevenue:   s.MonthlyRevenue,
	}
}
