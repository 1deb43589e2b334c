package orders

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type trackingRequest struct {
	CourierName  *string `json:"courier_name" validate:"omitempty,max=120"`
	TrackingLink *string `json:"tracking_link" validate:"omitempty,max=2048"`
}
