package admin

import (
	"net/http"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/api/validators"
	"github.com/gravadormedico/voicepen-backend/internal/analytics"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// AnalyticsSummary reports sales, recovery and delivery totals for the last `days` days.
func AnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", analytics.DefaultDays, 1, analytics.MaxDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
