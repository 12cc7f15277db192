package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/internal/notify"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// OrderItemDTO is the API shape of one order line.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	BaleID    *uuid.UUID      `json:"bale_id,omitempty"`
	Name      string          `json:"name"`
	ImageURL  *string         `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// HistoryEntryDTO is one row of an order's status trail.
type HistoryEntryDTO struct {
	ID        uuid.UUID `json:"id"`
	EntryType string    `json:"entry_type"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDTO is the full admin-facing order shape.
type OrderDTO struct {
	ID                    uuid.UUID                   `json:"id"`
	OrderNumber           string                      `json:"order_number"`
	CustomerName          string                      `json:"customer_name"`
	CustomerEmail         *string                     `json:"customer_email,omitempty"`
	CustomerPhone         *string                     `json:"customer_phone,omitempty"`
	DeliveryMethod        enums.DeliveryMethod        `json:"delivery_method"`
	DeliveryAddress       *string                     `json:"delivery_address,omitempty"`
	DeliveryNotes         *string                     `json:"delivery_notes,omitempty"`
	DeliveryFee           decimal.Decimal             `json:"delivery_fee"`
	PaymentMethod         enums.PaymentMethod         `json:"payment_method"`
	PaymentReference      *string                     `json:"payment_reference,omitempty"`
	FulfillmentStatus     enums.FulfillmentStatus     `json:"fulfillment_status"`
	PaymentTrackingStatus enums.PaymentTrackingStatus `json:"payment_tracking_status"`
	Subtotal              decimal.Decimal             `json:"subtotal"`
	Discount              decimal.Decimal             `json:"discount"`
	Total                 decimal.Decimal             `json:"total"`
	AmountPaid            decimal.Decimal             `json:"amount_paid"`
	AmountOwing           decimal.Decimal             `json:"amount_owing"`
	Feedback              *string                     `json:"feedback,omitempty"`
	RefundReason          *string                     `json:"refund_reason,omitempty"`
	Items                 []OrderItemDTO              `json:"items"`
	History               []HistoryEntryDTO           `json:"history,omitempty"`
	CreatedAt             time.Time                   `json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
}

// TrackingDTO is the reduced public shape returned by order tracking.
type TrackingDTO struct {
	OrderNumber           string                      `json:"order_number"`
	FulfillmentStatus     enums.FulfillmentStatus     `json:"fulfillment_status"`
	PaymentTrackingStatus enums.PaymentTrackingStatus `json:"payment_tracking_status"`
	Total                 decimal.Decimal             `json:"total"`
	AmountPaid            decimal.Decimal             `json:"amount_paid"`
	AmountOwing           decimal.Decimal             `json:"amount_owing"`
	Items                 []OrderItemDTO              `json:"items"`
	History               []HistoryEntryDTO           `json:"history"`
	CreatedAt             time.Time                   `json:"created_at"`
}

// MutationResult pairs the mutated order with the notification outcome so
// controllers can tell the admin which channels reached the customer.
type MutationResult struct {
	Order        *OrderDTO               `json:"order"`
	Notification *notify.DispatchSummary `json:"notification,omitempty"`
}

// OrderListResult is one page of orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func toItemDTOs(items []models.OrderItem) []OrderItemDTO {
	out := make([]OrderItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItemDTO{
			ID:        item.ID,
			BaleID:    item.BaleID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return out
}

func toHistoryDTOs(entries []models.OrderStatusHistory) []HistoryEntryDTO {
	out := make([]HistoryEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryDTO{
			ID:        entry.ID,
			EntryType: entry.EntryType,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}

func toOrderDTO(order *models.Order, history []models.OrderStatusHistory) *OrderDTO {
	return &OrderDTO{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		CustomerName:          order.CustomerName,
		CustomerEmail:         order.CustomerEmail,
		CustomerPhone:         order.CustomerPhone,
		DeliveryMethod:        order.DeliveryMethod,
		DeliveryAddress:       order.DeliveryAddress,
		DeliveryNotes:         order.DeliveryNotes,
		DeliveryFee:           order.DeliveryFee,
		PaymentMethod:         order.PaymentMethod,
		PaymentReference:      order.PaymentReference,
		FulfillmentStatus:     order.FulfillmentStatus,
		PaymentTrackingStatus: order.PaymentTrackingStatus,
		Subtotal:              order.Subtotal,
		Discount:              order.Discount,
		Total:                 order.Total,
		AmountPaid:            order.AmountPaid,
		AmountOwing:           order.AmountOwing(),
		Feedback:              order.Feedback,
		RefundReason:          order.RefundReason,
		Items:                 toItemDTOs(order.Items),
		History:               toHistoryDTOs(history),
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

func toTrackingDTO(order *models.Order, history []models.OrderStatusHistory) *TrackingDTO {
	return &TrackingDTO{
		OrderNumber:           order.OrderNumber,
		FulfillmentStatus:     order.FulfillmentStatus,
		PaymentTrackingStatus: order.PaymentTrackingStatus,
		Total:                 order.Total,
		AmountPaid:            order.AmountPaid,
		AmountOwing:           order.AmountOwing(),
		Items:                 toItemDTOs(order.Items),
		History:               toHistoryDTOs(history),
		CreatedAt:             order.CreatedAt,
	}
}
