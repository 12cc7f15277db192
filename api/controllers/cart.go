package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalcart "github.com/kagiso-dev/thriftbales-backend/internal/cart"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

type cartLineRequest struct {
	BaleID    string `json:"bale_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
	UnitPrice string `json:"unit_price" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type cartQuoteRequest struct {
	Lines       []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
	DeliveryFee *string           `json:"delivery_fee,omitempty"`
}

type cartQuoteResponse struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// QuoteCart prices a storefront cart without persisting anything. The cart
// lives on the client; this endpoint is the authoritative arithmetic.
func QuoteCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		basket := internalcart.Cart{}
		for _, line := range req.Lines {
			baleID, err := uuid.Parse(line.BaleID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bale id"))
				return
			}
			unitPrice, err := parseAmount(line.UnitPrice, "unit_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			basket = basket.Add(internalcart.Line{
				ProductID: baleID,
				Name:      line.Name,
				UnitPrice: unitPrice,
			})
			basket = basket.UpdateQuantity(baleID, line.Quantity)
		}

		deliveryFee := decimal.Zero
		if req.DeliveryFee != nil {
			fee, err := parseAmount(*req.DeliveryFee, "delivery_fee")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			deliveryFee = fee
		}

		subtotal := basket.Total()
		responses.WriteSuccess(w, cartQuoteResponse{
			Subtotal:    subtotal,
			DeliveryFee: deliveryFee,
			Total:       subtotal.Add(deliveryFee),
			ItemCount:   basket.Count(),
		})
	}
}
