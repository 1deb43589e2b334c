package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Quote is a priced cart that has not been persisted.
type Quote struct {
	Lines      []pricing.Line
	Priced     pricing.PricedCart
	CouponCode *string
}

// Service builds orders from carts.
type Service interface {
	Build(ctx context.Context, input BuildInput) (*models.Order, error)
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

// Deps wires the order builder.
type Deps struct {
	Tx       txRunner
	Catalog  catalog.Repository
	Coupons  coupons.Repository
	Orders   orders.Repository
	Settings settings.Provider
	Outbox   outboxPublisher
	// ReserveStock decrements product stock inside the order transaction.
	ReserveStock bool
	Metrics      *metrics.Storefront
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	tx           txRunner
	catalog      catalog.Repository
	coupons      coupons.Repository
	orders       orders.Repository
	settings     settings.Provider
	outbox       outboxPublisher
	reserveStock bool
	metrics      *metrics.Storefront
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{
		tx:           deps.Tx,
		catalog:      deps.Catalog,
		coupons:      deps.Coupons,
		orders:       deps.Orders,
		settings:     deps.Settings,
		outbox:       deps.Outbox,
		reserveStock: deps.ReserveStock,
		metrics:      deps.Metrics,
		logg:         deps.Logger,
		now:          deps.Now,
	}, nil
}

// pricedLine pairs a cart line with the product it was checked against.
type pricedLine struct {
	line    pricing.Line
	product models.Product
}

func (s *service) Build(ctx context.Context, input BuildInput) (*models.Order, error) {
	started := s.now()
	order, err := s.build(ctx, input)
	s.metrics.ObserveCheckout(s.now().Sub(started))
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.CheckoutFailed(string(code))
		if reason, ok := coupons.RejectionReason(err); ok {
			s.metrics.CouponRejected(reason.String())
		}
		if s.logg != nil {
			fctx := s.logg.WithFields(ctx, map[string]any{"code": code, "lines": len(input.Lines)})
			s.logg.Warn(fctx, "checkout.rejected")
		}
		return nil, err
	}

	s.metrics.OrderCreated(order.PaymentMethod.String())
	if s.logg != nil {
		lctx := s.logg.WithOrderID(ctx, order.ID.String())
		lctx = s.logg.WithFields(lctx, map[string]any{
			"total":          money.Format(order.Total),
			"payment_method": order.PaymentMethod,
			"coupon_applied": order.CouponID != nil,
		})
		s.logg.Info(lctx, "checkout.order_created")
	}
	return order, nil
}

func (s *service) build(ctx context.Context, input BuildInput) (*models.Order, error) {
	cart, err := mergeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	shipping := input.Shipping.normalized()
	if err := shipping.validate(); err != nil {
		return nil, err
	}

	cfg, err := s.settings.GetShippingConfig(ctx)
	if err != nil {
		return nil, err
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod, "allowed": cfg.EnabledPaymentMethods()})
	}
	if !cfg.PaymentMethodEnabled(method) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method not available").
			WithDetails(map[string]any{"payment_method": method, "allowed": cfg.EnabledPaymentMethods()})
	}

	priced, err := s.priceLines(ctx, cart, true)
	if err != nil {
		return nil, err
	}
	lines := make([]pricing.Line, len(priced))
	for i, pl := range priced {
		lines[i] = pl.line
	}

	var applied *coupons.Applicable
	if strings.TrimSpace(input.CouponCode) != "" {
		applied, err = s.evaluateCoupon(ctx, input.CouponCode, lines)
		if err != nil {
			return nil, err
		}
	}

	discount := decimal.Zero
	if applied != nil {
		discount = applied.Discount
	}
	totals := pricing.Price(lines, discount, cfg.Pricing())

	order := &models.Order{
		CustomerID:         input.CustomerID,
		CustomerName:       shipping.FullName,
		CustomerEmail:      strings.ToLower(shipping.Email),
		CustomerPhone:      shipping.Phone,
		ShippingAddress:    shipping.Address,
		ShippingCity:       shipping.City,
		ShippingPostalCode: shipping.PostalCode,
		Notes:              shipping.Notes,
		Subtotal:           totals.Subtotal,
		Discount:           totals.Discount,
		ShippingFee:        totals.ShippingFee,
		Total:              totals.Total,
		PaymentMethod:      method,
		Status:             enums.OrderStatusPending,
		Items:              make([]models.OrderItem, 0, len(priced)),
	}
	if applied != nil {
		couponID := applied.Coupon.ID
		code := applied.Coupon.Code
		order.CouponID = &couponID
		order.CouponCode = &code
	}
	for _, pl := range priced {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   pl.product.ID,
			ProductName: pl.product.Name,
			Quantity:    pl.line.Quantity,
			UnitPrice:   money.Round(pl.line.UnitPrice),
			LineTotal:   money.Round(money.LineTotal(pl.line.UnitPrice, pl.line.Quantity)),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if order.CouponID != nil {
			if err := s.coupons.WithTx(tx).IncrementUsage(ctx, *order.CouponID); err != nil {
				if errors.Is(err, coupons.ErrUsageConflict) {
					return pkgerrors.New(pkgerrors.CodeConflict, "coupon is no longer available").
						WithDetails(map[string]any{"coupon_code": *order.CouponCode})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
			}
		}

		if s.reserveStock {
			catalogTx := s.catalog.WithTx(tx)
			for _, pl := range priced {
				ok, err := catalogTx.DecrementStock(ctx, pl.product.ID, pl.line.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
				}
				if !ok {
					return insufficientStock(pl.product, pl.line.Quantity)
				}
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         input.Actor,
			Data:          orderCreatedPayload(order),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	cart, err := mergeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	cfg, err := s.settings.GetShippingConfig(ctx)
	if err != nil {
		return nil, err
	}
	priced, err := s.priceLines(ctx, cart, false)
	if err != nil {
		return nil, err
	}
	lines := make([]pricing.Line, len(priced))
	for i, pl := range priced {
		lines[i] = pl.line
	}

	quote := &Quote{Lines: lines}
	discount := decimal.Zero
	if strings.TrimSpace(input.CouponCode) != "" {
		applied, err := s.evaluateCoupon(ctx, input.CouponCode, lines)
		if err != nil {
			return nil, err
		}
		discount = applied.Discount
		code := applied.Coupon.Code
		quote.CouponCode = &code
	}
	quote.Priced = pricing.Price(lines, discount, cfg.Pricing())
	return quote, nil
}

// priceLines resolves every cart line against the catalog. Lines are checked
// in cart order and the first failure wins. strict enforces stock and the
// price snapshot.
func (s *service) priceLines(ctx context.Context, lines []CartLine, strict bool) ([]pricedLine, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	out := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		current := money.Round(product.EffectivePrice())
		if strict && product.Stock < line.Quantity {
			return nil, insufficientStock(product, line.Quantity)
		}
		if strict && line.PriceSnapshot != nil && !money.Round(*line.PriceSnapshot).Equal(current) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart changed, please review and retry").
				WithDetails(map[string]any{
					"product_id":     product.ID,
					"price_snapshot": money.Format(*line.PriceSnapshot),
					"current_price":  money.Format(current),
				})
		}
		out = append(out, pricedLine{
			line: pricing.Line{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: current,
			},
			product: product,
		})
	}
	return out, nil
}

func (s *service) evaluateCoupon(ctx context.Context, code string, lines []pricing.Line) (*coupons.Applicable, error) {
	coupon, err := coupons.Load(ctx, s.coupons, code)
	if err != nil {
		return nil, err
	}
	return coupons.Evaluate(ctx, coupon, coupons.Cart{Lines: lines}, s.catalog, s.now().UTC())
}

func insufficientStock(product models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id":   product.ID,
			"product_name": product.Name,
			"requested":    requested,
			"available":    product.Stock,
		})
}

func orderCreatedPayload(order *models.Order) payloads.OrderCreatedEvent {
	return payloads.OrderCreatedEvent{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerEmail: order.CustomerEmail,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Subtotal:      money.NewAmount(order.Subtotal),
		Discount:      money.NewAmount(order.Discount),
		ShippingFee:   money.NewAmount(order.ShippingFee),
		Total:         money.NewAmount(order.Total),
		CouponCode:    order.CouponCode,
		ItemCount:     len(order.Items),
	}
}
