package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalorders "github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/paystack"
)

type createOrderItemRequest struct {
	BaleID    *string `json:"bale_id,omitempty"`
	Name      string  `json:"name" validate:"required,max=200"`
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice string  `json:"unit_price" validate:"required"`
}

type createOrderRequest struct {
	CustomerName     string                   `json:"customer_name" validate:"required,max=200"`
	CustomerEmail    *string                  `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone    *string                  `json:"customer_phone,omitempty" validate:"omitempty,max=20"`
	DeliveryMethod   string                   `json:"delivery_method" validate:"required"`
	DeliveryAddress  *string                  `json:"delivery_address,omitempty" validate:"omitempty,max=500"`
	DeliveryNotes    *string                  `json:"delivery_notes,omitempty" validate:"omitempty,max=500"`
	DeliveryFee      string                   `json:"delivery_fee" validate:"required"`
	PaymentMethod    string                   `json:"payment_method" validate:"required"`
	PaymentReference *string                  `json:"payment_reference,omitempty"`
	Items            []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder is the public checkout endpoint. Card payments must carry a
// reference that verifies against the gateway before the order is recorded
// as fully paid.
func CreateOrder(svc internalorders.Service, verifier paystack.Verifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateOrderInput(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if input.PaymentMethod == enums.PaymentMethodCard {
			if input.PaymentReference == nil || strings.TrimSpace(*input.PaymentReference) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required for card payments"))
				return
			}
			total := orderTotal(input)
			if err := verifyCardPayment(r.Context(), verifier, *input.PaymentReference, total); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else if input.PaymentReference != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment reference only valid for card payments"))
			return
		}

		result, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TrackOrder is the public status lookup by order number.
func TrackOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}
		tracking, err := svc.TrackByNumber(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tracking)
	}
}

func buildCreateOrderInput(req createOrderRequest) (internalorders.CreateOrderInput, error) {
	var input internalorders.CreateOrderInput

	deliveryMethod, err := enums.ParseDeliveryMethod(req.DeliveryMethod)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method")
	}
	paymentMethod, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	deliveryFee, err := parseAmount(req.DeliveryFee, "delivery_fee")
	if err != nil {
		return input, err
	}

	items := make([]internalorders.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		unitPrice, err := parseAmount(item.UnitPrice, "unit_price")
		if err != nil {
			return input, err
		}
		var baleID *uuid.UUID
		if item.BaleID != nil && *item.BaleID != "" {
			parsed, err := uuid.Parse(*item.BaleID)
			if err != nil {
				return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bale id")
			}
			baleID = &parsed
		}
		items = append(items, internalorders.CreateOrderItemInput{
			BaleID:    baleID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}

	return internalorders.CreateOrderInput{
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		DeliveryMethod:   deliveryMethod,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryNotes:    req.DeliveryNotes,
		DeliveryFee:      deliveryFee,
		PaymentMethod:    paymentMethod,
		PaymentReference: req.PaymentReference,
		Items:            items,
	}, nil
}

func orderTotal(input internalorders.CreateOrderInput) decimal.Decimal {
	total := input.DeliveryFee
	for _, item := range input.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal amount")
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	return value, nil
}
