package enums

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder            OutboxAggregateType = "order"
	AggregateWholesaleInquiry OutboxAggregateType = "wholesale_inquiry"
)

var aggregateTypes = set[OutboxAggregateType]{AggregateOrder, AggregateWholesaleInquiry}

func (a OutboxAggregateType) IsValid() bool { return aggregateTypes.has(a) }

// ParseOutboxAggregateType matches exactly; stored values are never re-cased.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return aggregateTypes.parse("aggregate type", value, nil)
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventOrderCreated            OutboxEventType = "order_created"
	EventOrderStatusChanged      OutboxEventType = "order_status_changed"
	EventOrderTrackingUpdated    OutboxEventType = "order_tracking_updated"
	EventWholesaleInquiryCreated OutboxEventType = "wholesale_inquiry_created"
	EventWholesaleStatusChanged  OutboxEventType = "wholesale_status_changed"
)

var eventTypes = set[OutboxEventType]{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderTrackingUpdated,
	EventWholesaleInquiryCreated,
	EventWholesaleStatusChanged,
}

func (e OutboxEventType) IsValid() bool { return eventTypes.has(e) }

// Aggregate returns the aggregate type the event belongs to.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	switch e {
	case EventOrderCreated, EventOrderStatusChanged, EventOrderTrackingUpdated:
		return AggregateOrder
	case EventWholesaleInquiryCreated, EventWholesaleStatusChanged:
		return AggregateWholesaleInquiry
	}
	return ""
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return eventTypes.parse("event type", value, nil)
}
