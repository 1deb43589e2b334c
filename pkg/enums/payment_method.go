package enums

import "strings"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
	// PaymentMethodCOD is cash on delivery. Store settings can switch it off.
	PaymentMethodCOD PaymentMethod = "COD"
)

var paymentMethods = set[PaymentMethod]{PaymentMethodCard, PaymentMethodCOD}

// PaymentMethods lists every method the storefront knows, enabled or not.
func PaymentMethods() []PaymentMethod { return paymentMethods.values() }

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return paymentMethods.has(p) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return paymentMethods.parse("payment method", value, strings.ToUpper)
}
