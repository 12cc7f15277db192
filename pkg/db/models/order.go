package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// Order is a customer order for one or more bales.
type Order struct {
	ID                    uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber           string                      `gorm:"column:order_number;not null;default:generate_order_number();uniqueIndex"`
	CustomerName          string                      `gorm:"column:customer_name;not null"`
	CustomerEmail         *string                     `gorm:"column:customer_email"`
	CustomerPhone         *string                     `gorm:"column:customer_phone"`
	DeliveryMethod        enums.DeliveryMethod        `gorm:"column:delivery_method;type:text;not null"`
	DeliveryAddress       *string                     `gorm:"column:delivery_address"`
	DeliveryNotes         *string                     `gorm:"column:delivery_notes"`
	DeliveryFee           decimal.Decimal             `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	PaymentMethod         enums.PaymentMethod         `gorm:"column:payment_method;type:text;not null"`
	PaymentReference      *string                     `gorm:"column:payment_reference"`
	FulfillmentStatus     enums.FulfillmentStatus     `gorm:"column:fulfillment_status;type:text;not null;default:'new_order'"`
	PaymentTrackingStatus enums.PaymentTrackingStatus `gorm:"column:payment_tracking_status;type:text;not null;default:'Awaiting payment'"`
	Subtotal              decimal.Decimal             `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Discount              decimal.Decimal             `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total                 decimal.Decimal             `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	AmountPaid            decimal.Decimal             `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	Feedback              *string                     `gorm:"column:feedback"`
	RefundReason          *string                     `gorm:"column:refund_reason"`
	Items                 []OrderItem                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History               []OrderStatusHistory        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt             gorm.DeletedAt              `gorm:"column:deleted_at;index"`
}

// AmountOwing is the unpaid balance, floored at zero.
func (o Order) AmountOwing() decimal.Decimal {
	owing := o.Total.Sub(o.AmountPaid)
	if owing.IsNegative() {
		return decimal.Zero
	}
	return owing
}
