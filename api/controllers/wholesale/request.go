package wholesale

import (
	"github.com/google/uuid"

	wholesalesvc "github.com/angelmondragon/storefront-backend/internal/wholesale"
)

type itemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// Field rules beyond shape live in the service so they apply to every caller.
type createRequest struct {
	ContactName string        `json:"contact_name"`
	CompanyName *string       `json:"company_name"`
	Email       *string       `json:"email"`
	Phone       string        `json:"phone"`
	Address     string        `json:"address"`
	Description string        `json:"description" validate:"max=4000"`
	Items       []itemRequest `json:"items" validate:"dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r createRequest) toInput() wholesalesvc.CreateInput {
	items := make([]wholesalesvc.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, wholesalesvc.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return wholesalesvc.CreateInput{
		ContactName: r.ContactName,
		CompanyName: r.CompanyName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Description: r.Description,
		Items:       items,
	}
}
