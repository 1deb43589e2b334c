package wholesale

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type inquiryItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type inquiryResponse struct {
	ID          uuid.UUID     `json:"id"`
	ContactName string        `json:"contact_name"`
	CompanyName *string       `json:"company_name,omitempty"`
	Email       *string       `json:"email,omitempty"`
	Phone       string        `json:"phone"`
	Address     string        `json:"address"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Items       []inquiryItem `json:"items"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type inquiryListResponse struct {
	Inquiries  []inquiryResponse `json:"inquiries"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newInquiryResponse(inquiry *models.WholesaleInquiry) inquiryResponse {
	items := make([]inquiryItem, 0, len(inquiry.Items))
	for _, item := range inquiry.Items {
		items = append(items, inquiryItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return inquiryResponse{
		ID:          inquiry.ID,
		ContactName: inquiry.ContactName,
		CompanyName: inquiry.CompanyName,
		Email:       inquiry.Email,
		Phone:       inquiry.Phone,
		Address:     inquiry.Address,
		Description: inquiry.Description,
		Status:      inquiry.Status.String(),
		Items:       items,
		CreatedAt:   inquiry.CreatedAt,
		UpdatedAt:   inquiry.UpdatedAt,
	}
}
