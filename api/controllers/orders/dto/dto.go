package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Order is the public representation of an order.
type Order struct {
	ID            uuid.UUID    `json:"id"`
	CustomerID    *uuid.UUID   `json:"customer_id,omitempty"`
	Status        string       `json:"status"`
	PaymentMethod string       `json:"payment_method"`
	Shipping      Shipping     `json:"shipping"`
	Items         []OrderItem  `json:"items"`
	Subtotal      money.Amount `json:"subtotal"`
	Discount      money.Amount `json:"discount"`
	ShippingFee   money.Amount `json:"shipping_fee"`
	Total         money.Amount `json:"total"`
	CouponCode    *string      `json:"coupon_code,omitempty"`
	CourierName   *string      `json:"courier_name,omitempty"`
	TrackingLink  *string      `json:"tracking_link,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type Shipping struct {
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Notes      *string `json:"notes,omitempty"`
}

type OrderItem struct {
	ID          uuid.UUID    `json:"id"`
	ProductID   uuid.UUID    `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   money.Amount `json:"unit_price"`
	LineTotal   money.Amount `json:"line_total"`
}

// OrderList is one admin page of orders.
type OrderList struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

func NewOrder(order *models.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   money.NewAmount(item.UnitPrice),
			LineTotal:   money.NewAmount(item.LineTotal),
		})
	}
	return Order{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Status:        order.Status.String(),
		PaymentMethod: order.PaymentMethod.String(),
		Shipping: Shipping{
			FullName:   order.CustomerName,
			Email:      order.CustomerEmail,
			Phone:      order.CustomerPhone,
			Address:    order.ShippingAddress,
			City:       order.ShippingCity,
			PostalCode: order.ShippingPostalCode,
			Notes:      order.Notes,
		},
		Items:        items,
		Subtotal:     money.NewAmount(order.Subtotal),
		Discount:     money.NewAmount(order.Discount),
		ShippingFee:  money.NewAmount(order.ShippingFee),
		Total:        money.NewAmount(order.Total),
		CouponCode:   order.CouponCode,
		CourierName:  order.CourierName,
		TrackingLink: order.TrackingLink,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

func NewOrderList(orders []models.Order, nextCursor string) OrderList {
	out := make([]Order, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrder(&orders[i]))
	}
	return OrderList{Orders: out, NextCursor: nextCursor}
}
