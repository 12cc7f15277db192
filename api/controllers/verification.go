package controllers

import (
	"net/http"

	"github.com/kagiso-dev/thriftbales-backend/api/responses"
	"github.com/kagiso-dev/thriftbales-backend/api/validators"
	internalverification "github.com/kagiso-dev/thriftbales-backend/internal/verification"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

type sendPINRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
}

type verifyPINRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
	PIN   string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

// SendVerificationPIN texts a one-time code to the given number.
func SendVerificationPIN(svc internalverification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendPINRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SendPIN(r.Context(), req.Phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sent": true})
	}
}

// VerifyPIN checks a submitted code; the code is consumed on success.
func VerifyPIN(svc internalverification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPINRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.VerifyPIN(r.Context(), req.Phone, req.PIN); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"verified": true})
	}
}
