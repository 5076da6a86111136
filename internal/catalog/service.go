package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notpazar/notpazar-backend/internal/media"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/logger"
	"github.com/notpazar/notpazar-backend/pkg/models"
)

// CollectionName is the products file under the store root. The name is
// kept from the original deployment so existing data files load as-is.
const CollectionName = "urunler.json"

const productDateLayout = "02 January 2006"

// Service manages the product metadata lifecycle: draft on upload,
// published after the publish workflow, removed on request.
type Service interface {
	CreateDraft(ctx context.Context, uploader, filename string) (models.Product, error)
	Publish(ctx context.Context, uploader, filename string, input PublishInput, images []ImageUpload) (models.Product, error)
	Remove(ctx context.Context, uploader, filename string) error
	ListPublished(ctx context.Context) ([]models.Product, error)
	ListByUploader(ctx context.Context, uploader string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
}

// PublishInput carries the metadata supplied on publish. Price stays a
// display string; the numeric value is scraped on demand.
type PublishInput struct {
	Title       string
	University  string
	Faculty     string
	Description string
	Price       string
}

// ImageUpload is one image offered during publish. Disallowed or
// unwritable images are skipped, never fatal to the publish itself.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type service struct {
	products *jsonstore.Collection[[]models.Product]
	media    media.Service
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires a catalog service over the products collection.
func NewService(store *jsonstore.Store, mediaSvc media.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if mediaSvc == nil {
		return nil, fmt.Errorf("media service required")
	}
	return &service{
		products: jsonstore.NewCollection(store, CollectionName, func() []models.Product { return []models.Product{} }),
		media:    mediaSvc,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// CreateDraft appends a new unpublished record for the uploader's file.
// Re-uploading the same filename is a conflict, not a second draft.
func (s *service) CreateDraft(ctx context.Context, uploader, filename string) (models.Product, error) {
	if uploader == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "uploader required")
	}
	if filename == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "filename required")
	}

	draft := models.Product{
		Filename:  filename,
		Uploader:  uploader,
		Published: false,
		Date:      s.now().Format(productDateLayout),
	}

	_, err := s.products.Update(ctx, func(products []models.Product) ([]models.Product, error) {
		if _, found := findByUpload(products, uploader, filename); found {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this file is already uploaded")
		}
		return append(products, draft), nil
	})
	if err != nil {
		return models.Product{}, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"uploader": uploader, "filename": filename}), "draft.created")
	}
	return draft, nil
}

// Publish upgrades the uploader's draft to a published product. The id
// is assigned and persisted first, image assets land on disk second,
// and a single atomic update flips published with all metadata last, so
// a published record never references an image that failed to write.
func (s *service) Publish(ctx context.Context, uploader, filename string, input PublishInput, images []ImageUpload) (models.Product, error) {
	productID, err := s.ensureID(ctx, uploader, filename)
	if err != nil {
		return models.Product{}, err
	}

	paths := s.saveImages(ctx, uploader, productID, images)

	var published models.Product
	_, err = s.products.Update(ctx, func(products []models.Product) ([]models.Product, error) {
		idx, found := findByUpload(products, uploader, filename)
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}

		p := products[idx]
		p.ID = productID
		p.Title = input.Title
		p.University = input.University
		p.Faculty = input.Faculty
		p.Description = input.Description
		p.Price = input.Price
		p.Images = paths
		p.Published = true

		products[idx] = p
		published = p
		return products, nil
	})
	if err != nil {
		return models.Product{}, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"product_id": productID, "images": len(paths)}), "product.published")
	}
	return published, nil
}

// ensureID assigns the product id if the draft has none yet. The id is
// persisted before any asset write so image paths can embed it.
func (s *service) ensureID(ctx context.Context, uploader, filename string) (string, error) {
	var productID string
	_, err := s.products.Update(ctx, func(products []models.Product) ([]models.Product, error) {
		idx, found := findByUpload(products, uploader, filename)
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		if products[idx].ID == "" {
			products[idx].ID = s.newProductID()
		}
		productID = products[idx].ID
		return products, nil
	})
	if err != nil {
		return "", err
	}
	return productID, nil
}

// saveImages persists each acceptable image and returns the recorded
// relative paths. A rejected or failed image is logged and skipped.
func (s *service) saveImages(ctx context.Context, uploader, productID string, images []ImageUpload) []string {
	paths := []string{}
	for _, img := range images {
		if img.Filename == "" || img.Content == nil {
			continue
		}
		rel, err := s.media.SaveProductImage(ctx, uploader, productID, img.Filename, img.Content)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"image": img.Filename, "reason": err.Error()}), "image.skipped")
			}
			continue
		}
		paths = append(paths, rel)
	}
	return paths
}

func (s *service) newProductID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", s.now().Format("20060102"), suffix)
}

// Remove deletes the metadata record and best-effort deletes the
// underlying files. Removing an absent product is not an error.
func (s *service) Remove(ctx context.Context, uploader, filename string) error {
	var productID string
	_, err := s.products.Update(ctx, func(products []models.Product) ([]models.Product, error) {
		kept := products[:0]
		for _, p := range products {
			if p.Uploader == uploader && p.Filename == filename {
				productID = p.ID
				continue
			}
			kept = append(kept, p)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	if err := s.media.RemoveProduct(uploader, productID, filename); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"filename": filename, "reason": err.Error()}), "asset.cleanup_failed")
	}
	return nil
}

// ListPublished returns published products in store (insertion) order.
func (s *service) ListPublished(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	published := []models.Product{}
	for _, p := range products {
		if p.Published {
			published = append(published, p)
		}
	}
	return published, nil
}

// ListByUploader returns the uploader's drafts and published products.
func (s *service) ListByUploader(ctx context.Context, uploader string) ([]models.Product, error) {
	products, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.Product{}
	for _, p := range products {
		if p.Uploader == uploader {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

// GetByID looks up a product by its published identifier.
func (s *service) GetByID(ctx context.Context, id string) (models.Product, error) {
	if id == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	products, err := s.products.Load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func findByUpload(products []models.Product, uploader, filename string) (int, bool) {
	for i, p := range products {
		if p.Uploader == uploader && p.Filename == filename {
			return i, true
		}
	}
	return -1, false
}
