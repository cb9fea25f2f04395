package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoshigrove/chasen-backend/api/controllers"
	"github.com/hoshigrove/chasen-backend/api/middleware"
	"github.com/hoshigrove/chasen-backend/internal/cart"
	"github.com/hoshigrove/chasen-backend/internal/compliance"
	"github.com/hoshigrove/chasen-backend/internal/identity"
	"github.com/hoshigrove/chasen-backend/internal/orders"
	"github.com/hoshigrove/chasen-backend/internal/quotes"
	"github.com/hoshigrove/chasen-backend/internal/rfq"
	"github.com/hoshigrove/chasen-backend/pkg/config"
	"github.com/hoshigrove/chasen-backend/pkg/db"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
	pkgredis "github.com/hoshigrove/chasen-backend/pkg/redis"
)

// NewRouter wires the HTTP surface: health probes, then the buyer and seller
// API groups behind auth, idempotency, and profile-resolution middleware.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	identityService identity.Service,
	cartService cart.Service,
	rfqService rfq.Service,
	quoteService quotes.Service,
	ordersRepo orders.Repository,
	ordersService orders.Service,
	complianceEval compliance.Evaluator,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(dbClient, redisClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/compliance/evaluate", controllers.EvaluateCompliance(complianceEval, logg))

		r.Route("/buyer", func(r chi.Router) {
			r.Use(middleware.BuyerContext(identityService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(cartService, logg))
				r.Delete("/", controllers.ClearCart(cartService, logg))
				r.Post("/items", controllers.AddCartItem(cartService, logg))
				r.Patch("/items/{skuId}", controllers.UpdateCartItem(cartService, logg))
				r.Delete("/items/{skuId}", controllers.RemoveCartItem(cartService, logg))
				r.Post("/checkout", controllers.CheckoutCart(cartService, logg))
				r.Post("/convert-to-rfq", controllers.ConvertCartToRFQ(cartService, logg))
			})

			r.Route("/rfqs", func(r chi.Router) {
				r.Post("/", controllers.CreateRFQ(rfqService, logg))
				r.Get("/", controllers.BuyerRFQList(rfqService, logg))
				r.Get("/{rfqId}", controllers.BuyerRFQDetail(rfqService, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.BuyerQuoteList(quoteService, logg))
				r.Get("/{quoteId}", controllers.BuyerQuoteDetail(quoteService, logg))
				r.Post("/{quoteId}/accept", controllers.AcceptQuote(quoteService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.BuyerOrderList(ordersRepo, logg))
				r.Get("/{orderId}", controllers.BuyerOrderDetail(ordersService, logg))
			})
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.SellerContext(identityService, logg))

			r.Route("/rfqs", func(r chi.Router) {
				r.Get("/", controllers.SellerRFQList(rfqService, logg))
				r.Get("/{rfqId}", controllers.SellerRFQDetail(rfqService, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Post("/", controllers.CreateQuote(quoteService, logg))
				r.Get("/", controllers.SellerQuoteList(quoteService, logg))
				r.Get("/{quoteId}", controllers.SellerQuoteDetail(quoteService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.SellerOrderList(ordersRepo, logg))
				r.Get("/{orderId}", controllers.SellerOrderDetail(ordersService, logg))
				r.Post("/{orderId}/status", controllers.UpdateOrderStatus(ordersService, logg))
			})
		})
	})

	return r
}
