package checkout

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
)

// CartLine is one line of a shopper's cart. PriceSnapshot is the effective
// price the storefront showed when the line was added; nil means the line
// was never priced client-side and takes the current price.
type CartLine struct {
	ProductID     uuid.UUID
	Quantity      int
	PriceSnapshot *decimal.Decimal
}

// ShippingInfo is the contact and delivery block of a checkout.
type ShippingInfo struct {
	FullName   string  `json:"full_name" validate:"required,notblank,max=120"`
	Email      string  `json:"email" validate:"required,email,max=254"`
	Phone      string  `json:"phone" validate:"required,notblank,min=5,max=32"`
	Address    string  `json:"address" validate:"required,notblank,max=255"`
	City       string  `json:"city" validate:"required,notblank,max=120"`
	PostalCode string  `json:"postal_code" validate:"required,notblank,max=20"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

// BuildInput is everything the order builder needs to create an order.
type BuildInput struct {
	CustomerID    *uuid.UUID
	Lines         []CartLine
	Shipping      ShippingInfo
	PaymentMethod string
	CouponCode    string
	Actor         *outbox.ActorRef
}

// QuoteInput prices a cart without persisting it.
type QuoteInput struct {
	Lines      []CartLine
	CouponCode string
}

var shippingValidator = validation.New()

func (s ShippingInfo) normalized() ShippingInfo {
	out := ShippingInfo{
		FullName:   strings.TrimSpace(s.FullName),
		Email:      strings.TrimSpace(s.Email),
		Phone:      strings.TrimSpace(s.Phone),
		Address:    strings.TrimSpace(s.Address),
		City:       strings.TrimSpace(s.City),
		PostalCode: strings.TrimSpace(s.PostalCode),
	}
	if s.Notes != nil {
		if notes := strings.TrimSpace(*s.Notes); notes != "" {
			out.Notes = &notes
		}
	}
	return out
}

func (s ShippingInfo) validate() error {
	err := shippingValidator.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping info")
	}
	details := map[string]string{}
	for _, fe := range errs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping info").WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case validation.TagNotBlank:
		return "must not be blank"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}

// mergeLines checks the cart shape before any lookup and folds repeated
// products into one line, keeping first-seen order. Repeats must agree on
// the price snapshot when both carry one.
func mergeLines(lines []CartLine) ([]CartLine, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	merged := make([]CartLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"line": i})
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"line": i, "product_id": line.ProductID})
		}
		if line.PriceSnapshot != nil && line.PriceSnapshot.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price snapshot must not be negative").
				WithDetails(map[string]any{"line": i, "product_id": line.ProductID})
		}

		at, dup := index[line.ProductID]
		if !dup {
			index[line.ProductID] = len(merged)
			merged = append(merged, line)
			continue
		}
		prev := &merged[at]
		switch {
		case prev.PriceSnapshot == nil:
			prev.PriceSnapshot = line.PriceSnapshot
		case line.PriceSnapshot != nil && !prev.PriceSnapshot.Equal(*line.PriceSnapshot):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "conflicting price snapshots for product").
				WithDetails(map[string]any{"line": i, "product_id": line.ProductID})
		}
		prev.Quantity += line.Quantity
	}
	return merged, nil
}
