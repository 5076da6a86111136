package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notpazar/notpazar-backend/pkg/config"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, string) {
	t.Helper()
	root := t.TempDir()
	svc, err := NewService(
		config.StorageConfig{UploadRoot: root},
		config.MediaConfig{
			DocumentExtensions: []string{"pdf", "docx", "pptx"},
			ImageExtensions:    []string{"png", "jpg", "jpeg", "gif"},
		},
		nil,
	)
	require.NoError(t, err)
	return svc, root
}

func TestSaveDocument(t *testing.T) {
	svc, root := newTestService(t)

	rel, err := svc.SaveDocument(context.Background(), "ayse@example.com", "calculus notes.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, "ayse@example.com/calculus_notes.pdf", rel)

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(raw))
}

func TestSaveDocumentRejectsDisallowedExtension(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SaveDocument(context.Background(), "ayse@example.com", "virus.exe", strings.NewReader("MZ"))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "err: %v", err)
}

func TestSaveProductImageRandomizesName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SaveProductImage(ctx, "ayse@example.com", "20250101-abcd1234", "cover.png", strings.NewReader("png-a"))
	require.NoError(t, err)
	second, err := svc.SaveProductImage(ctx, "ayse@example.com", "20250101-abcd1234", "cover.png", strings.NewReader("png-b"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, strings.HasPrefix(first, "ayse@example.com/20250101-abcd1234/"), "path: %s", first)
	require.True(t, strings.HasSuffix(first, "_cover.png"), "path: %s", first)
}

func TestSaveProductImageRejectsDisallowedExtension(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SaveProductImage(context.Background(), "ayse@example.com", "20250101-abcd1234", "cover.svg", strings.NewReader("<svg/>"))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "err: %v", err)
}

func TestOpenAssetRejectsTraversal(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenAsset("../outside.txt")
	require.Error(t, err)
}

func TestOpenDocumentRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveDocument(ctx, "ayse@example.com", "notes.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	f, err := svc.OpenDocument("ayse@example.com", "notes.pdf")
	require.NoError(t, err)
	defer f.Close()

	raw, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "content", string(raw))
}

func TestOpenAssetMissingIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenAsset("ayse@example.com/nope.pdf")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "err: %v", err)
}

func TestRemoveProductIsIdempotent(t *testing.T) {
	svc, root := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveDocument(ctx, "ayse@example.com", "notes.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	_, err = svc.SaveProductImage(ctx, "ayse@example.com", "20250101-abcd1234", "cover.png", strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveProduct("ayse@example.com", "20250101-abcd1234", "notes.pdf"))
	require.NoError(t, svc.RemoveProduct("ayse@example.com", "20250101-abcd1234", "notes.pdf"))

	_, err = os.Stat(filepath.Join(root, "ayse@example.com", "notes.pdf"))
	require.True(t, os.IsNotExist(err))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"calculus notes.pdf", "calculus_notes.pdf"},
		{"../../etc/passwd", "passwd"},
		{"..\\windows\\evil.pdf", "evil.pdf"},
		{"türkçe ödev.pdf", "t_rk_e__dev.pdf"},
		{"..", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
