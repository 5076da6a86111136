package controllers

import (
	"net/http"

	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/internal/checkout"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		user := middleware.UserEmailFromContext(r.Context())

		result, err := svc.Checkout(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
