package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/internal/media"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

// DownloadDocument streams a product's document to its buyer. The
// uploader can always fetch their own file; anyone else must hold the
// product in their purchase ledger.
func DownloadDocument(catalogSvc catalog.Service, ledgerSvc ledger.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || ledgerSvc == nil || mediaSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "download services unavailable"))
			return
		}

		productID := chi.URLParam(r, "productID")
		user := middleware.UserEmailFromContext(r.Context())

		product, err := catalogSvc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if product.Uploader != user {
			purchased, err := ledgerSvc.IsPurchased(r.Context(), user, productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !purchased {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "product has not been purchased"))
				return
			}
		}

		file, err := mediaSvc.OpenDocument(product.Uploader, product.Filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", product.Filename))
		if _, err := io.Copy(w, file); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "download.stream_interrupted")
		}
	}
}

// ServeAsset serves stored files by their relative upload path.
// Documents sit directly under the uploader's directory and stay
// private to that uploader; product images live one level deeper and
// any authenticated user may fetch them.
func ServeAsset(mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mediaSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if rel == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "asset path is required"))
			return
		}

		user := middleware.UserEmailFromContext(r.Context())
		segments := strings.Split(path.Clean(rel), "/")
		if len(segments) < 3 && segments[0] != user {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "asset is private"))
			return
		}

		file, err := mediaSvc.OpenAsset(rel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading asset"))
			return
		}

		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
	}
}
