package coupons

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Scope restricts which cart lines a coupon can apply to. The concrete types
// are GlobalScope, ProductScope, CategoryScope and DealScope; build the
// targeted ones with NewScope so their id set is never empty.
type Scope interface {
	Kind() enums.CouponScope
	// Targets returns the scoped ids in a stable order, nil for GlobalScope.
	Targets() []uuid.UUID
	sealed()
}

// GlobalScope matches every cart.
type GlobalScope struct{}

func (GlobalScope) Kind() enums.CouponScope { return enums.CouponScopeGlobal }
func (GlobalScope) Targets() []uuid.UUID    { return nil }
func (GlobalScope) sealed()                 {}

type idSet struct {
	order []uuid.UUID
	set   map[uuid.UUID]struct{}
}

func newIDSet(ids []uuid.UUID) idSet {
	s := idSet{set: make(map[uuid.UUID]struct{}, len(ids))}
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := s.set[id]; ok {
			continue
		}
		s.set[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return s
}

func (s idSet) Contains(id uuid.UUID) bool {
	_, ok := s.set[id]
	return ok
}

func (s idSet) Targets() []uuid.UUID {
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

func (s idSet) Len() int { return len(s.order) }

// ProductScope matches carts containing one of the listed products.
type ProductScope struct{ idSet }

func (ProductScope) Kind() enums.CouponScope { return enums.CouponScopeProduct }
func (ProductScope) sealed()                 {}

// CategoryScope matches carts containing a product from one of the listed categories.
type CategoryScope struct{ idSet }

func (CategoryScope) Kind() enums.CouponScope { return enums.CouponScopeCategory }
func (CategoryScope) sealed()                 {}

// DealScope matches carts containing a product from one of the listed deals.
type DealScope struct{ idSet }

func (DealScope) Kind() enums.CouponScope { return enums.CouponScopeDeal }
func (DealScope) sealed()                 {}

// NewScope builds the scope for kind. Targeted kinds require at least one
// non-nil id; GLOBAL ignores ids.
func NewScope(kind enums.CouponScope, ids []uuid.UUID) (Scope, error) {
	if kind == enums.CouponScopeGlobal {
		return GlobalScope{}, nil
	}
	if !kind.Targeted() {
		return nil, fmt.Errorf("invalid coupon scope %q", kind)
	}
	set := newIDSet(ids)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%s scope requires at least one target id", kind)
	}
	switch kind {
	case enums.CouponScopeProduct:
		return ProductScope{set}, nil
	case enums.CouponScopeCategory:
		return CategoryScope{set}, nil
	default:
		return DealScope{set}, nil
	}
}
