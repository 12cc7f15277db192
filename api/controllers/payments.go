package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/paystack"
)

type verifyPaymentRequest struct {
	Reference      string `json:"reference" validate:"required,max=200"`
	ExpectedAmount string `json:"expected_amount" validate:"required"`
}

type verifyPaymentResponse struct {
	Reference string          `json:"reference"`
	Verified  bool            `json:"verified"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Channel   string          `json:"channel,omitempty"`
	PaidAt    string          `json:"paid_at,omitempty"`
}

// VerifyPaystackPayment checks a card payment reference against the gateway
// before the storefront submits the order.
func VerifyPaystackPayment(verifier paystack.Verifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expected, err := parseAmount(req.ExpectedAmount, "expected_amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tx, err := lookupTransaction(r.Context(), verifier, req.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verified := tx.Succeeded() &&
			strings.EqualFold(tx.Currency, paystack.Currency) &&
			tx.Amount.Equal(expected)

		responses.WriteSuccess(w, verifyPaymentResponse{
			Reference: tx.Reference,
			Verified:  verified,
			Amount:    tx.Amount,
			Currency:  tx.Currency,
			Channel:   tx.Channel,
			PaidAt:    tx.PaidAt,
		})
	}
}

func lookupTransaction(ctx context.Context, verifier paystack.Verifier, reference string) (paystack.Transaction, error) {
	if verifier == nil {
		return paystack.Transaction{}, pkgerrors.New(pkgerrors.CodeInternal, "payment verification unavailable")
	}
	tx, err := verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		if errors.Is(err, paystack.ErrTransactionNotFound) {
			return paystack.Transaction{}, pkgerrors.New(pkgerrors.CodeNotFound, "payment reference not found")
		}
		return paystack.Transaction{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment")
	}
	return tx, nil
}

// verifyCardPayment gates order creation: the referenced transaction must
// have settled in ZAR for exactly the order total.
func verifyCardPayment(ctx context.Context, verifier paystack.Verifier, reference string, total decimal.Decimal) error {
	tx, err := lookupTransaction(ctx, verifier, reference)
	if err != nil {
		return err
	}
	if !tx.Succeeded() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment has not settled")
	}
	if !strings.EqualFold(tx.Currency, paystack.Currency) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment settled in an unsupported currency")
	}
	if !tx.Amount.Equal(total) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment amount does not match the order total")
	}
	return nil
}
