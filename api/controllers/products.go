package controllers

import (
	"net/http"
	"path"

	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/api/responses"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	"github.com/notpazar/notpazar-backend/internal/media"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
	"github.com/notpazar/notpazar-backend/pkg/pagination"
)

const multipartMemoryLimit = 8 << 20

// ProductUpload accepts a multipart document, stores the file and
// registers an unpublished draft for it in one request.
func ProductUpload(catalogSvc catalog.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || mediaSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog services unavailable"))
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		uploader := middleware.UserEmailFromContext(r.Context())

		saved, err := mediaSvc.SaveDocument(r.Context(), uploader, header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// products reference documents by their stored base name
		product, err := catalogSvc.CreateDraft(r.Context(), uploader, path.Base(saved))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductPublish fills in the listing metadata for an uploaded draft
// and flips it live. Images arrive in the same multipart form under
// the "images" key; unusable ones are skipped.
func ProductPublish(catalogSvc catalog.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || mediaSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog services unavailable"))
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		filename := r.FormValue("filename")
		if filename == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "filename is required"))
			return
		}

		input := catalog.PublishInput{
			Title:       r.FormValue("title"),
			University:  r.FormValue("university"),
			Faculty:     r.FormValue("faculty"),
			Description: r.FormValue("description"),
			Price:       r.FormValue("price"),
		}

		var images []catalog.ImageUpload
		var closers []func() error
		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["images"] {
				f, err := header.Open()
				if err != nil {
					if logg != nil {
						logg.Warn(logg.WithFields(r.Context(), map[string]any{"image": header.Filename, "reason": err.Error()}), "publish.image_open_failed")
					}
					continue
				}
				closers = append(closers, f.Close)
				images = append(images, catalog.ImageUpload{Filename: header.Filename, Content: f})
			}
		}
		defer func() {
			for _, closeFile := range closers {
				closeFile()
			}
		}()

		uploader := middleware.UserEmailFromContext(r.Context())

		product, err := catalogSvc.Publish(r.Context(), uploader, filename, input, images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filename := r.URL.Query().Get("filename")
		if filename == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "filename is required"))
			return
		}

		uploader := middleware.UserEmailFromContext(r.Context())

		if err := catalogSvc.Remove(r.Context(), uploader, filename); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"filename": filename})
	}
}

func ProductsListPublished(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := catalogSvc.ListPublished(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.FromQuery(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
		responses.WriteSuccess(w, pagination.Paginate(products, params))
	}
}

func ProductsListMine(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		uploader := middleware.UserEmailFromContext(r.Context())

		products, err := catalogSvc.ListByUploader(r.Context(), uploader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}
