package controllers

import (
	"net/http"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/api/validators"
	"github.com/gravadormedico/voicepen-backend/internal/checkout"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// BeginCheckout opens a pending checkout attempt for the storefront session.
func BeginCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.BeginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Begin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
