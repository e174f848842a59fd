package admin

import (
	"net/http"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/api/validators"
	"github.com/gravadormedico/voicepen-backend/internal/auth"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// TokenHeader mirrors the access token so clients can read it without parsing the body.
const TokenHeader = "X-Gravador-Token"

// Login authenticates a back-office operator.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(TokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
