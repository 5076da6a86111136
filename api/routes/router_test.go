package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notpazar/notpazar-backend/internal/cart"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	checkoutsvc "github.com/notpazar/notpazar-backend/internal/checkout"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/internal/media"
	"github.com/notpazar/notpazar-backend/internal/support"
	"github.com/notpazar/notpazar-backend/internal/users"
	"github.com/notpazar/notpazar-backend/pkg/config"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/types"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "notpazar-test",
			ExpirationMinutes: 5,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Storage: config.StorageConfig{
			DatabaseDir: t.TempDir(),
			UploadRoot:  t.TempDir(),
		},
		Media: config.MediaConfig{
			DocumentExtensions: []string{"pdf", "docx", "pptx"},
			ImageExtensions:    []string{"png", "jpg", "jpeg", "gif"},
			MaxUploadBytes:     1 << 20,
		},
	}

	store, err := jsonstore.New(cfg.Storage.DatabaseDir)
	require.NoError(t, err)

	mediaService, err := media.NewService(cfg.Storage, cfg.Media, nil)
	require.NoError(t, err)

	userService, err := users.NewService(store, cfg.Password)
	require.NoError(t, err)

	catalogService, err := catalog.NewService(store, mediaService, nil)
	require.NoError(t, err)

	cartService, err := cart.NewService(store, catalogService)
	require.NoError(t, err)

	ledgerService, err := ledger.NewService(store)
	require.NoError(t, err)

	checkoutService, err := checkoutsvc.NewService(cartService, ledgerService, nil)
	require.NoError(t, err)

	supportService, err := support.NewService(store)
	require.NoError(t, err)

	return NewRouter(cfg, nil, userService, catalogService, mediaService, cartService, ledgerService, checkoutService, supportService)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

func registerUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func uploadDocument(t *testing.T, router http.Handler, token, filename string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test document"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product map[string]any
	decodeData(t, rec, &product)
	return product
}

func publishProduct(t *testing.T, router http.Handler, token, filename, price string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("filename", filename))
	require.NoError(t, writer.WriteField("title", "Calculus Notes"))
	require.NoError(t, writer.WriteField("university", "Test University"))
	require.NoError(t, writer.WriteField("faculty", "Engineering"))
	require.NoError(t, writer.WriteField("description", "Full semester notes"))
	require.NoError(t, writer.WriteField("price", price))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/publish", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var product map[string]any
	decodeData(t, rec, &product)
	return product
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/account"},
		{http.MethodGet, "/api/v1/products"},
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/support"},
	} {
		rec := doJSON(t, router, route.method, route.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &resp)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/account", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var account struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, rec, &account)
	require.Equal(t, "alice@example.com", account.User.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadPublishBrowseCheckoutDownload(t *testing.T) {
	router := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com")
	buyerToken := registerUser(t, router, "buyer@example.com")

	draft := uploadDocument(t, router, sellerToken, "notes.pdf")
	filename, _ := draft["filename"].(string)
	require.NotEmpty(t, filename)

	published := publishProduct(t, router, sellerToken, filename, "120")
	productID, _ := published["id"].(string)
	require.NotEmpty(t, productID)
	require.Equal(t, true, published["published"])

	// buyer browses the catalog
	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	decodeData(t, rec, &page)
	require.Equal(t, 1, page.Total)

	// download before purchase is forbidden
	rec = doJSON(t, router, http.MethodGet, "/api/v1/downloads/"+productID, buyerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// add to cart and check out
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]string{
		"product_id": productID,
		"filename":   filename,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Total int `json:"total"`
	}
	decodeData(t, rec, &view)
	require.Equal(t, 120, view.Total)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		PurchasedIDs []string `json:"purchased_ids"`
	}
	decodeData(t, rec, &result)
	require.Equal(t, []string{productID}, result.PurchasedIDs)

	// cart is empty after checkout
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	require.Equal(t, 0, view.Total)

	// purchase shows up on the account page
	rec = doJSON(t, router, http.MethodGet, "/api/v1/account", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var account struct {
		Purchased []map[string]any `json:"purchased"`
	}
	decodeData(t, rec, &account)
	require.Len(t, account.Purchased, 1)

	// download now succeeds
	rec = doJSON(t, router, http.MethodGet, "/api/v1/downloads/"+productID, buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestUploaderCanDownloadOwnDocument(t *testing.T) {
	router := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com")
	draft := uploadDocument(t, router, sellerToken, "own.pdf")
	filename, _ := draft["filename"].(string)
	published := publishProduct(t, router, sellerToken, filename, "50")
	productID, _ := published["id"].(string)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/downloads/"+productID, sellerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "seller@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSupportLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/support", token, map[string]string{
		"message": "download never finished",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/support", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tickets []map[string]any
	decodeData(t, rec, &tickets)
	require.Len(t, tickets, 1)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/support/0", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/support/5", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartQuantityEndpoint(t *testing.T) {
	router := newTestRouter(t)

	sellerToken := registerUser(t, router, "seller@example.com")
	buyerToken := registerUser(t, router, "buyer@example.com")

	draft := uploadDocument(t, router, sellerToken, "quant.pdf")
	filename, _ := draft["filename"].(string)
	published := publishProduct(t, router, sellerToken, filename, "10")
	productID, _ := published["id"].(string)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]string{
		"product_id": productID,
		"filename":   filename,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/cart/items/%s/quantity", productID), buyerToken, map[string]string{
		"action": "increase",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		Total int `json:"total"`
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", buyerToken, nil)
	decodeData(t, rec, &view)
	require.Equal(t, 20, view.Total)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/"+productID, buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
