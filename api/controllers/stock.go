package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalstock "github.com/kagiso-dev/thriftbales-backend/internal/stock"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// maxImageUploadBytes caps a single stock image upload.
const maxImageUploadBytes = 10 << 20

type createStockItemRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID       *string `json:"category_id,omitempty"`
	CostPrice        *string `json:"cost_price,omitempty"`
	SellingPrice     *string `json:"selling_price,omitempty"`
	MarginPercentage *string `json:"margin_percentage,omitempty"`
	Quantity         int     `json:"quantity" validate:"min=0"`
	IsPublished      bool    `json:"is_published"`
}

type updateStockItemRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID       *string `json:"category_id,omitempty"`
	CostPrice        *string `json:"cost_price,omitempty"`
	SellingPrice     *string `json:"selling_price,omitempty"`
	MarginPercentage *string `json:"margin_percentage,omitempty"`
	Quantity         *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	IsPublished      *bool   `json:"is_published,omitempty"`
}

// AdminListStockItems lists stock items with optional category and search filters.
func AdminListStockItems(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalstock.ListStockItemsInput{
			Limit:         limit,
			Cursor:        strings.TrimSpace(r.URL.Query().Get("cursor")),
			Search:        strings.TrimSpace(r.URL.Query().Get("search")),
			PublishedOnly: r.URL.Query().Get("published") == "true",
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}

		list, err := svc.ListStockItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminGetStockItem returns one stock item with its images.
func AdminGetStockItem(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetStockItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminCreateStockItem records a new stock item. Any two of cost price,
// selling price and margin must be supplied; the third is derived.
func AdminCreateStockItem(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createStockItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		costPrice, err := parseOptionalAmount(req.CostPrice, "cost_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellingPrice, err := parseOptionalAmount(req.SellingPrice, "selling_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		margin, err := parseOptionalAmount(req.MarginPercentage, "margin_percentage")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateStockItem(r.Context(), internalstock.CreateStockItemInput{
			Name:             req.Name,
			Description:      req.Description,
			CategoryID:       categoryID,
			CostPrice:        costPrice,
			SellingPrice:     sellingPrice,
			MarginPercentage: margin,
			Quantity:         req.Quantity,
			IsPublished:      req.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminUpdateStockItem applies a partial mutation and re-derives pricing.
func AdminUpdateStockItem(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStockItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		costPrice, err := parseOptionalAmount(req.CostPrice, "cost_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellingPrice, err := parseOptionalAmount(req.SellingPrice, "selling_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		margin, err := parseOptionalAmount(req.MarginPercentage, "margin_percentage")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateStockItem(r.Context(), itemID, internalstock.UpdateStockItemInput{
			Name:             req.Name,
			Description:      req.Description,
			CategoryID:       categoryID,
			CostPrice:        costPrice,
			SellingPrice:     sellingPrice,
			MarginPercentage: margin,
			Quantity:         req.Quantity,
			IsPublished:      req.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminDeleteStockItem removes a stock item and its stored images.
func AdminDeleteStockItem(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteStockItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminUploadStockImage accepts a raw image body and attaches it to the item.
func AdminUploadStockImage(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
		if idx := strings.Index(contentType, ";"); idx >= 0 {
			contentType = strings.TrimSpace(contentType[:idx])
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxImageUploadBytes+1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image body"))
			return
		}
		if len(data) > maxImageUploadBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the upload limit"))
			return
		}

		item, err := svc.AddImage(r.Context(), itemID, contentType, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminRemoveStockImage detaches and deletes one stored image.
func AdminRemoveStockImage(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := imageIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.RemoveImage(r.Context(), itemID, imageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminSetPrimaryStockImage marks one image as the listing thumbnail.
func AdminSetPrimaryStockImage(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := stockItemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := imageIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.SetPrimaryImage(r.Context(), itemID, imageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func stockItemIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id is required")
	}
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock item id")
	}
	return itemID, nil
}

func imageIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "imageId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "image id is required")
	}
	imageID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image id")
	}
	return imageID, nil
}
