package wholesale

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

// ItemInput is one requested product line of an inquiry.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput carries a bulk-order request from the storefront.
type CreateInput struct {
	ContactName string
	CompanyName *string
	Email       *string
	Phone       string
	Address     string
	Description string
	Items       []ItemInput
	Actor       *outbox.ActorRef
}

// StatusInput moves an inquiry to another status.
type StatusInput struct {
	InquiryID uuid.UUID
	Status    string
	Actor     *outbox.ActorRef
}

// ListFilters narrows the admin inquiry list.
type ListFilters struct {
	Status *enums.WholesaleStatus
}

// InquiryList is one page of inquiries, newest first.
type InquiryList struct {
	Inquiries  []models.WholesaleInquiry
	NextCursor string
}
