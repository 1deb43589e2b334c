package orders

import (
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy interface {
	Check(current, requested enums.OrderStatus) error
	Name() string
}

// PermissivePolicy lets administrators set any status at any time, which
// keeps free-form correction of mis-set statuses possible.
type PermissivePolicy struct{}

func (PermissivePolicy) Check(current, requested enums.OrderStatus) error {
	return nil
}

func (PermissivePolicy) Name() string { return "permissive" }

// StrictPolicy enforces PENDING -> PROCESSING -> SHIPPED -> DELIVERED with
// CANCELLED reachable from any non-terminal status. Re-applying the current
// status is allowed.
type StrictPolicy struct{}

var forwardEdges = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusPending:    enums.OrderStatusProcessing,
	enums.OrderStatusProcessing: enums.OrderStatusShipped,
	enums.OrderStatusShipped:    enums.OrderStatusDelivered,
}

func (StrictPolicy) Check(current, requested enums.OrderStatus) error {
	if current == requested {
		return nil
	}
	if !current.IsTerminal() {
		if requested == enums.OrderStatusCancelled || forwardEdges[current] == requested {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
		WithDetails(map[string]any{
			"current":   current,
			"requested": requested,
		})
}

func (StrictPolicy) Name() string { return "strict" }

// PolicyFromConfig selects the policy configured for this deployment.
func PolicyFromConfig(cfg config.OrdersConfig) TransitionPolicy {
	if cfg.StrictTransitions {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
