package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/notpazar/notpazar-backend/pkg/config"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/logger"
	"go.uber.org/multierr"
)

// Service persists uploaded binary assets on local disk, namespaced by
// uploader and (for published-product images) product id. Asset writes
// carry none of the JSON store's atomic-replace guarantee; callers
// sequence them before any metadata flip.
type Service interface {
	SaveDocument(ctx context.Context, uploader, filename string, r io.Reader) (string, error)
	SaveProductImage(ctx context.Context, uploader, productID, filename string, r io.Reader) (string, error)
	OpenDocument(uploader, filename string) (*os.File, error)
	OpenAsset(relPath string) (*os.File, error)
	RemoveProduct(uploader, productID, filename string) error
	AllowedDocument(filename string) bool
	AllowedImage(filename string) bool
}

type service struct {
	root     string
	docExts  map[string]struct{}
	imgExts  map[string]struct{}
	maxBytes int64
	logg     *logger.Logger
}

// NewService wires a media service rooted at the configured upload
// directory.
func NewService(storage config.StorageConfig, media config.MediaConfig, logg *logger.Logger) (Service, error) {
	if storage.UploadRoot == "" {
		return nil, fmt.Errorf("upload root required")
	}
	if err := os.MkdirAll(storage.UploadRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload root: %w", err)
	}
	return &service{
		root:     storage.UploadRoot,
		docExts:  extensionSet(media.DocumentExtensions),
		imgExts:  extensionSet(media.ImageExtensions),
		maxBytes: media.MaxUploadBytes,
		logg:     logg,
	}, nil
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		cleaned := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if cleaned != "" {
			set[cleaned] = struct{}{}
		}
	}
	return set
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func (s *service) AllowedDocument(filename string) bool {
	_, ok := s.docExts[extension(filename)]
	return ok
}

func (s *service) AllowedImage(filename string) bool {
	_, ok := s.imgExts[extension(filename)]
	return ok
}

// SaveDocument stores an uploaded document under the uploader's folder
// and returns its path relative to the upload root.
func (s *service) SaveDocument(ctx context.Context, uploader, filename string, r io.Reader) (string, error) {
	safe := SanitizeFilename(filename)
	if safe == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file name is empty")
	}
	if !s.AllowedDocument(safe) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file type %q is not allowed", extension(safe)))
	}

	rel := path.Join(sanitizeSegment(uploader), safe)
	if err := s.writeFile(rel, r); err != nil {
		return "", err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "asset", rel), "document.saved")
	}
	return rel, nil
}

// SaveProductImage stores a product image with a randomized filename
// prefix and returns the relative path recorded on the product.
func (s *service) SaveProductImage(ctx context.Context, uploader, productID, filename string, r io.Reader) (string, error) {
	safe := SanitizeFilename(filename)
	if safe == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image name is empty")
	}
	if !s.AllowedImage(safe) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image type %q is not allowed", extension(safe)))
	}
	if productID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	rel := path.Join(sanitizeSegment(uploader), productID, random+"_"+safe)
	if err := s.writeFile(rel, r); err != nil {
		return "", err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "asset", rel), "image.saved")
	}
	return rel, nil
}

func (s *service) writeFile(rel string, r io.Reader) error {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating asset directory")
	}

	f, err := os.Create(full)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating asset file")
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(full)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "writing asset file")
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "closing asset file")
	}
	return nil
}

// OpenDocument opens an uploaded document for download.
func (s *service) OpenDocument(uploader, filename string) (*os.File, error) {
	return s.OpenAsset(path.Join(sanitizeSegment(uploader), SanitizeFilename(filename)))
}

// OpenAsset opens any stored asset by its relative path. Traversal
// outside the upload root is rejected.
func (s *service) OpenAsset(relPath string) (*os.File, error) {
	cleaned := path.Clean("/" + relPath)[1:]
	if cleaned == "" || strings.HasPrefix(cleaned, "..") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset path")
	}

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "opening asset")
	}
	return f, nil
}

// RemoveProduct deletes a product's document and image directory.
// Missing files are tolerated; removal is idempotent.
func (s *service) RemoveProduct(uploader, productID, filename string) error {
	var errs error

	doc := filepath.Join(s.root, sanitizeSegment(uploader), SanitizeFilename(filename))
	if err := os.Remove(doc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = multierr.Append(errs, fmt.Errorf("removing document: %w", err))
	}

	if productID != "" {
		images := filepath.Join(s.root, sanitizeSegment(uploader), productID)
		if err := os.RemoveAll(images); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("removing image directory: %w", err))
		}
	}

	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, errs, "removing product assets")
	}
	return nil
}

// SanitizeFilename reduces an uploaded name to a single safe path
// segment: the base name with anything outside [A-Za-z0-9._-] replaced
// by underscores.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	return cleaned
}

func sanitizeSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-', r == '@':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
