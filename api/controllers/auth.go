package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/api/validators"
	"github.com/notpazar/notpazar-backend/internal/users"
	pkgAuth "github.com/notpazar/notpazar-backend/pkg/auth"
	"github.com/notpazar/notpazar-backend/pkg/config"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	AccessToken string     `json:"access_token"`
	User        publicUser `json:"user"`
}

type publicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// AuthRegister creates an account and immediately issues a token, so a
// fresh registration does not need a second login round-trip.
func AuthRegister(svc users.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), users.RegisterInput{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Role:     body.Role,
			Phone:    body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := mintToken(jwtCfg, user.Email, user.Name, user.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{
			AccessToken: token,
			User:        publicUser{Name: user.Name, Email: user.Email, Role: user.Role, Phone: user.Phone},
		})
	}
}

func AuthLogin(svc users.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Authenticate(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := mintToken(jwtCfg, user.Email, user.Name, user.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResponse{
			AccessToken: token,
			User:        publicUser{Name: user.Name, Email: user.Email, Role: user.Role, Phone: user.Phone},
		})
	}
}

func mintToken(cfg config.JWTConfig, email, name, role string) (string, error) {
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		Email: email,
		Name:  name,
		Role:  role,
		JTI:   uuid.NewString(),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	return token, nil
}
