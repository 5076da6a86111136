package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/api/validators"
	"github.com/notpazar/notpazar-backend/internal/cart"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

type cartAddRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
}

type cartQuantityRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease"`
}

type cartAddResponse struct {
	Added bool `json:"added"`
	Count int  `json:"count"`
}

func CartView(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		user := middleware.UserEmailFromContext(r.Context())

		view, err := svc.View(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user := middleware.UserEmailFromContext(r.Context())

		count, added, err := svc.Add(r.Context(), user, body.ProductID, body.Filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartAddResponse{Added: added, Count: count})
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productID")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		user := middleware.UserEmailFromContext(r.Context())

		if err := svc.Remove(r.Context(), user, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"product_id": productID})
	}
}

func CartQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productID")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := cart.ParseQuantityAction(body.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user := middleware.UserEmailFromContext(r.Context())

		if err := svc.SetQuantity(r.Context(), user, productID, action); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"product_id": productID})
	}
}
