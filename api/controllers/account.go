package controllers

import (
	"net/http"

	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/api/validators"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/internal/users"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
	"github.com/notpazar/notpazar-backend/pkg/models"
)

type accountResponse struct {
	User      publicUser       `json:"user"`
	Purchased []models.Product `json:"purchased"`
}

type profileUpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// AccountProfile returns the profile together with the products the
// user has bought. Purchased IDs that no longer resolve to a product
// are dropped rather than failing the whole page.
func AccountProfile(userSvc users.Service, ledgerSvc ledger.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userSvc == nil || ledgerSvc == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account services unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		user, err := userSvc.Get(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids, err := ledgerSvc.PurchasedIDs(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchased := make([]models.Product, 0, len(ids))
		for _, id := range ids {
			product, err := catalogSvc.GetByID(r.Context(), id)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
					continue
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			purchased = append(purchased, product)
		}

		responses.WriteSuccess(w, accountResponse{
			User:      publicUser{Name: user.Name, Email: user.Email, Role: user.Role, Phone: user.Phone},
			Purchased: purchased,
		})
	}
}

func AccountUpdate(userSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		user, err := userSvc.UpdateProfile(r.Context(), email, users.ProfileUpdate{
			Name:     body.Name,
			Phone:    body.Phone,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, publicUser{Name: user.Name, Email: user.Email, Role: user.Role, Phone: user.Phone})
	}
}
