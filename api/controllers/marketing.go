package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalmarketing "github.com/kagiso-dev/thriftbales-backend/internal/marketing"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type createCampaignRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Channel     string  `json:"channel" validate:"required"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Body        string  `json:"body" validate:"required"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
}

type updateCampaignRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Channel     *string `json:"channel,omitempty"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Body        *string `json:"body,omitempty"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
}

// AdminListCampaigns returns a cursor-paginated campaign listing.
func AdminListCampaigns(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListCampaigns(r.Context(), limit, strings.TrimSpace(r.URL.Query().Get("cursor")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminGetCampaign returns one campaign.
func AdminGetCampaign(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := campaignIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		campaign, err := svc.GetCampaign(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaign)
	}
}

// AdminCreateCampaign records a new draft campaign.
func AdminCreateCampaign(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCampaignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		channel, err := enums.ParseCampaignChannel(req.Channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign channel"))
			return
		}
		scheduledAt, err := parseOptionalTime(req.ScheduledAt, "scheduled_at")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.CreateCampaign(r.Context(), internalmarketing.CreateCampaignInput{
			Name:        req.Name,
			Channel:     channel,
			Subject:     req.Subject,
			Body:        req.Body,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, campaign)
	}
}

// AdminUpdateCampaign mutates a draft campaign.
func AdminUpdateCampaign(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := campaignIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateCampaignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalmarketing.UpdateCampaignInput{
			Name:    req.Name,
			Subject: req.Subject,
			Body:    req.Body,
		}
		if req.Channel != nil {
			channel, err := enums.ParseCampaignChannel(*req.Channel)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign channel"))
				return
			}
			input.Channel = &channel
		}
		scheduledAt, err := parseOptionalTime(req.ScheduledAt, "scheduled_at")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ScheduledAt = scheduledAt

		campaign, err := svc.UpdateCampaign(r.Context(), campaignID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaign)
	}
}

// AdminDeleteCampaign removes a draft campaign.
func AdminDeleteCampaign(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := campaignIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCampaign(r.Context(), campaignID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminSendCampaign dispatches the campaign to its audience and returns the
// delivery tally.
func AdminSendCampaign(svc internalmarketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := campaignIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SendCampaign(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func campaignIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "campaignId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id is required")
	}
	campaignID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign id")
	}
	return campaignID, nil
}

func parseOptionalTime(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be RFC 3339")
	}
	return &parsed, nil
}
