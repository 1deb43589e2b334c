package enums

import "strings"

// WholesaleStatus tracks how far sales has progressed a bulk inquiry.
type WholesaleStatus string

const (
	WholesaleStatusPending   WholesaleStatus = "PENDING"
	WholesaleStatusContacted WholesaleStatus = "CONTACTED"
	WholesaleStatusCompleted WholesaleStatus = "COMPLETED"
	WholesaleStatusRejected  WholesaleStatus = "REJECTED"
)

var wholesaleStatuses = set[WholesaleStatus]{
	WholesaleStatusPending,
	WholesaleStatusContacted,
	WholesaleStatusCompleted,
	WholesaleStatusRejected,
}

func WholesaleStatuses() []WholesaleStatus { return wholesaleStatuses.values() }

func (s WholesaleStatus) String() string { return string(s) }

func (s WholesaleStatus) IsValid() bool { return wholesaleStatuses.has(s) }

func ParseWholesaleStatus(value string) (WholesaleStatus, error) {
	return wholesaleStatuses.parse("wholesale status", value, strings.ToUpper)
}
