package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records checkout, coupon and fulfillment activity.
type Storefront struct {
	ordersCreated    *prometheus.CounterVec
	checkoutFailures *prometheus.CounterVec
	couponRejections *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders created at checkout.",
	}, []string{"payment_method"})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Checkout attempts rejected or failed, by error code.",
	}, []string{"code"})
	couponRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_coupon_rejections_total",
		Help: "Coupon evaluations that did not apply, by reason.",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_transitions_total",
		Help: "Order status changes applied by administrators.",
	}, []string{"from", "to"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Duration of order builds in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(ordersCreated, checkoutFailures, couponRejections, transitions, checkoutDuration)
	return &Storefront{
		ordersCreated:    ordersCreated,
		checkoutFailures: checkoutFailures,
		couponRejections: couponRejections,
		transitions:      transitions,
		checkoutDuration: checkoutDuration,
	}
}

// OrderCreated counts a persisted order.
func (s *Storefront) OrderCreated(paymentMethod string) {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// CheckoutFailed counts a checkout that returned an error.
func (s *Storefront) CheckoutFailed(code string) {
	if s == nil || s.checkoutFailures == nil {
		return
	}
	s.checkoutFailures.WithLabelValues(normalizeLabel(code)).Inc()
}

// CouponRejected counts a coupon evaluation that failed with reason.
func (s *Storefront) CouponRejected(reason string) {
	if s == nil || s.couponRejections == nil {
		return
	}
	s.couponRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// Transition counts an order status change.
func (s *Storefront) Transition(from, to string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveCheckout records how long an order build took.
func (s *Storefront) ObserveCheckout(d time.Duration) {
	if s == nil || s.checkoutDuration == nil {
		return
	}
	s.checkoutDuration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
