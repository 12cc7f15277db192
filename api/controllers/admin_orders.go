package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/api/middleware"
	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalorders "github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// AdminListOrders returns a filtered, cursor-paginated order listing.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.ListOrdersInput{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("fulfillment_status")); raw != "" {
			status, err := enums.ParseFulfillmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment status"))
				return
			}
			input.FulfillmentStatus = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
			status, err := enums.ParsePaymentTrackingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
				return
			}
			input.PaymentTrackingStatus = &status
		}

		list, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminOrderDetail returns the full order with items and history.
func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type advanceStatusRequest struct {
	Status   string  `json:"status" validate:"required"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=140"`
	MarkPaid bool    `json:"mark_paid"`
}

// AdminAdvanceStatus drives a fulfillment transition with optional note and
// explicit mark-paid flag.
func AdminAdvanceStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseFulfillmentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment status"))
			return
		}

		result, err := svc.AdvanceStatus(r.Context(), internalorders.AdvanceStatusInput{
			OrderID:  orderID,
			Status:   status,
			Note:     req.Note,
			MarkPaid: req.MarkPaid,
			ActorID:  actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type updatePaymentRequest struct {
	Status       string  `json:"status" validate:"required"`
	AmountPaid   *string `json:"amount_paid,omitempty"`
	RefundReason *string `json:"refund_reason,omitempty" validate:"omitempty,max=500"`
}

// AdminUpdatePayment moves the payment-tracking status.
func AdminUpdatePayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentTrackingStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		input := internalorders.UpdatePaymentInput{
			OrderID:      orderID,
			Status:       status,
			RefundReason: req.RefundReason,
		}
		if req.AmountPaid != nil {
			amount, err := parseAmount(*req.AmountPaid, "amount_paid")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.AmountPaid = &amount
		}

		result, err := svc.UpdatePayment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type sendNoteRequest struct {
	Note string `json:"note" validate:"required,max=140"`
}

// AdminSendNote appends a free-text note and notifies the customer.
func AdminSendNote(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req sendNoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendNote(r.Context(), internalorders.SendNoteInput{
			OrderID: orderID,
			Note:    req.Note,
			ActorID: actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminSendReminder dispatches a payment reminder for the outstanding balance.
func AdminSendReminder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SendPaymentReminder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type deleteOrderRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminDeleteOrder removes an order after re-verifying the admin password.
func AdminDeleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req deleteOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID := actorID(r)
		if adminID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing"))
			return
		}

		err = svc.DeleteOrder(r.Context(), internalorders.DeleteOrderInput{
			OrderID:  orderID,
			AdminID:  *adminID,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

// actorID lifts the authenticated admin out of the request context; nil when
// the route is unauthenticated or the value is malformed.
func actorID(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
