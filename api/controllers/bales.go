package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalbales "github.com/kagiso-dev/thriftbales-backend/internal/bales"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type baleItemRequest struct {
	StockItemID  *string `json:"stock_item_id,omitempty"`
	Label        string  `json:"label" validate:"required,max=200"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	CostPrice    string  `json:"cost_price" validate:"required"`
	SellingPrice string  `json:"selling_price" validate:"required"`
}

type createBaleRequest struct {
	Name          string            `json:"name" validate:"required,max=200"`
	Description   *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID    *string           `json:"category_id,omitempty"`
	WeightKG      *string           `json:"weight_kg,omitempty"`
	ItemCount     *int              `json:"item_count,omitempty" validate:"omitempty,min=0"`
	Items         []baleItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	OverridePrice *string           `json:"override_price,omitempty"`
	Discount      *string           `json:"discount,omitempty"`
	StockQuantity int               `json:"stock_quantity" validate:"min=0"`
	Position      int               `json:"position" validate:"min=0"`
	IsPublished   bool              `json:"is_published"`
	ImageURL      *string           `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateBaleRequest struct {
	Name          *string            `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID    *string            `json:"category_id,omitempty"`
	WeightKG      *string            `json:"weight_kg,omitempty"`
	ItemCount     *int               `json:"item_count,omitempty" validate:"omitempty,min=0"`
	Items         *[]baleItemRequest `json:"items,omitempty"`
	OverridePrice *string            `json:"override_price,omitempty"`
	ClearOverride bool               `json:"clear_override"`
	Discount      *string            `json:"discount,omitempty"`
	StockQuantity *int               `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	Position      *int               `json:"position,omitempty" validate:"omitempty,min=0"`
	IsPublished   *bool              `json:"is_published,omitempty"`
	ImageURL      *string            `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ListPublishedBales is the storefront catalog listing.
func ListPublishedBales(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return listBales(svc, logg, true)
}

// AdminListBales includes unpublished bales.
func AdminListBales(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return listBales(svc, logg, false)
}

func listBales(svc internalbales.Service, logg *logger.Logger, publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalbales.ListBalesInput{
			Limit:         limit,
			Cursor:        strings.TrimSpace(r.URL.Query().Get("cursor")),
			Search:        strings.TrimSpace(r.URL.Query().Get("search")),
			PublishedOnly: publishedOnly,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}

		list, err := svc.ListBales(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetBale returns one bale with its packed items and pricing.
func GetBale(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baleID, err := baleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bale, err := svc.GetBale(r.Context(), baleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bale)
	}
}

// AdminCreateBale records a new bale and derives its pricing.
func AdminCreateBale(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := buildCreateBaleInput(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bale, err := svc.CreateBale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bale)
	}
}

// AdminUpdateBale applies a partial mutation and recomputes pricing.
func AdminUpdateBale(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baleID, err := baleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateBaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := buildUpdateBaleInput(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bale, err := svc.UpdateBale(r.Context(), baleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bale)
	}
}

// AdminDeleteBale removes a bale and its packed items.
func AdminDeleteBale(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baleID, err := baleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteBale(r.Context(), baleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type reorderBalesRequest struct {
	BaleIDs []string `json:"bale_ids" validate:"required,min=1"`
}

// AdminReorderBales rewrites catalog positions to match the submitted order.
func AdminReorderBales(svc internalbales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderBalesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderedIDs := make([]uuid.UUID, 0, len(req.BaleIDs))
		for _, raw := range req.BaleIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bale id"))
				return
			}
			orderedIDs = append(orderedIDs, id)
		}

		if err := svc.ReorderBales(r.Context(), orderedIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"reordered": true})
	}
}

func baleIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "baleId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "bale id is required")
	}
	baleID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bale id")
	}
	return baleID, nil
}

func buildCreateBaleInput(req createBaleRequest) (internalbales.CreateBaleInput, error) {
	var input internalbales.CreateBaleInput

	categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return input, err
	}
	weight, err := parseOptionalAmount(req.WeightKG, "weight_kg")
	if err != nil {
		return input, err
	}
	override, err := parseOptionalAmount(req.OverridePrice, "override_price")
	if err != nil {
		return input, err
	}
	discount, err := parseOptionalAmount(req.Discount, "discount")
	if err != nil {
		return input, err
	}
	items, err := buildBaleItems(req.Items)
	if err != nil {
		return input, err
	}

	return internalbales.CreateBaleInput{
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    categoryID,
		WeightKG:      weight,
		ItemCount:     req.ItemCount,
		Items:         items,
		OverridePrice: override,
		Discount:      discount,
		StockQuantity: req.StockQuantity,
		Position:      req.Position,
		IsPublished:   req.IsPublished,
		ImageURL:      req.ImageURL,
	}, nil
}

func buildUpdateBaleInput(req updateBaleRequest) (internalbales.UpdateBaleInput, error) {
	var input internalbales.UpdateBaleInput

	categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return input, err
	}
	weight, err := parseOptionalAmount(req.WeightKG, "weight_kg")
	if err != nil {
		return input, err
	}
	override, err := parseOptionalAmount(req.OverridePrice, "override_price")
	if err != nil {
		return input, err
	}
	discount, err := parseOptionalAmount(req.Discount, "discount")
	if err != nil {
		return input, err
	}

	input = internalbales.UpdateBaleInput{
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    categoryID,
		WeightKG:      weight,
		ItemCount:     req.ItemCount,
		OverridePrice: override,
		ClearOverride: req.ClearOverride,
		Discount:      discount,
		StockQuantity: req.StockQuantity,
		Position:      req.Position,
		IsPublished:   req.IsPublished,
		ImageURL:      req.ImageURL,
	}
	if req.Items != nil {
		items, err := buildBaleItems(*req.Items)
		if err != nil {
			return input, err
		}
		input.Items = &items
	}
	return input, nil
}

func buildBaleItems(reqs []baleItemRequest) ([]internalbales.BaleItemInput, error) {
	items := make([]internalbales.BaleItemInput, 0, len(reqs))
	for _, item := range reqs {
		costPrice, err := parseAmount(item.CostPrice, "cost_price")
		if err != nil {
			return nil, err
		}
		sellingPrice, err := parseAmount(item.SellingPrice, "selling_price")
		if err != nil {
			return nil, err
		}
		stockItemID, err := parseOptionalUUID(item.StockItemID, "stock_item_id")
		if err != nil {
			return nil, err
		}
		items = append(items, internalbales.BaleItemInput{
			StockItemID:  stockItemID,
			Label:        item.Label,
			Quantity:     item.Quantity,
			CostPrice:    costPrice,
			SellingPrice: sellingPrice,
		})
	}
	return items, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &id, nil
}

func parseOptionalAmount(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := parseAmount(*raw, field)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
