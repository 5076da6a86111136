package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notpazar/notpazar-backend/api/controllers"
	"github.com/notpazar/notpazar-backend/api/middleware"
	"github.com/notpazar/notpazar-backend/internal/cart"
	"github.com/notpazar/notpazar-backend/internal/catalog"
	checkoutsvc "github.com/notpazar/notpazar-backend/internal/checkout"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/internal/media"
	"github.com/notpazar/notpazar-backend/internal/support"
	"github.com/notpazar/notpazar-backend/internal/users"
	"github.com/notpazar/notpazar-backend/pkg/config"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	userService users.Service,
	catalogService catalog.Service,
	mediaService media.Service,
	cartService cart.Service,
	ledgerService ledger.Service,
	checkoutService checkoutsvc.Service,
	supportService support.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(cfg.Storage.DatabaseDir, logg))
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(cfg.JWT, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", controllers.AuthRegister(userService, cfg.JWT, logg))
		r.Post("/auth/login", controllers.AuthLogin(userService, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/account", controllers.AccountProfile(userService, ledgerService, catalogService, logg))
			r.Put("/account", controllers.AccountUpdate(userService, logg))

			r.Get("/products", controllers.ProductsListPublished(catalogService, logg))
			r.Get("/products/mine", controllers.ProductsListMine(catalogService, logg))
			r.Post("/products", controllers.ProductUpload(catalogService, mediaService, logg))
			r.Post("/products/publish", controllers.ProductPublish(catalogService, mediaService, logg))
			r.Delete("/products", controllers.ProductDelete(catalogService, logg))

			r.Get("/cart", controllers.CartView(cartService, logg))
			r.Post("/cart/items", controllers.CartAdd(cartService, logg))
			r.Delete("/cart/items/{productID}", controllers.CartRemove(cartService, logg))
			r.Post("/cart/items/{productID}/quantity", controllers.CartQuantity(cartService, logg))

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Get("/support", controllers.SupportList(supportService, logg))
			r.Post("/support", controllers.SupportCreate(supportService, logg))
			r.Delete("/support/{index}", controllers.SupportDelete(supportService, logg))

			r.Get("/downloads/{productID}", controllers.DownloadDocument(catalogService, ledgerService, mediaService, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/uploads/*", controllers.ServeAsset(mediaService, logg))
	})

	return r
}
