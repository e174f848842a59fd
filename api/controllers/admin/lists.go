package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/api/validators"
	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/internal/sales"
	"github.com/gravadormedico/voicepen-backend/internal/webhooklogs"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
	"github.com/gravadormedico/voicepen-backend/pkg/pagination"
)

type webhookLogLister interface {
	List(ctx context.Context, filter webhooklogs.ListFilter, params pagination.Params) (pagination.Page[models.WebhookLog], error)
}

type saleLister interface {
	List(ctx context.Context, filter sales.ListFilter, params pagination.Params) (pagination.Page[models.Sale], error)
}

type attemptLister interface {
	List(ctx context.Context, filter checkoutattempts.ListFilter, params pagination.Params) (pagination.Page[models.CheckoutAttempt], error)
}

// WebhookLogs pages through the inbound gateway audit trail, newest first.
// Optional filters: success, endpoint.
func WebhookLogs(repo webhookLogLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook logs unavailable"))
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		success, err := validators.ParseQueryBool(r, "success")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := webhooklogs.ListFilter{
			Success:  success,
			Endpoint: validators.SanitizeString(r.URL.Query().Get("endpoint"), 200),
		}
		page, err := repo.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhook logs"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Sales lists reconciled orders. Optional filters: status, email.
func Sales(repo saleLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales unavailable"))
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := sales.ListFilter{Email: validators.SanitizeString(r.URL.Query().Get("email"), 254)}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSaleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		page, err := repo.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// RecoveryAttempts lists checkout attempts for the recovery dashboard.
// Optional filters: recovery_status, email.
func RecoveryAttempts(repo attemptLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout attempts unavailable"))
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := checkoutattempts.ListFilter{Email: validators.SanitizeString(r.URL.Query().Get("email"), 254)}
		if raw := strings.TrimSpace(r.URL.Query().Get("recovery_status")); raw != "" {
			status, err := enums.ParseRecoveryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recovery_status"))
				return
			}
			filter.RecoveryStatus = &status
		}
		page, err := repo.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checkout attempts"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}
