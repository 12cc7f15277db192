package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kagiso-dev/thriftbales-backend/api/controllers"
	"github.com/kagiso-dev/thriftbales-backend/api/middleware"
	"github.com/kagiso-dev/thriftbales-backend/internal/auth"
	"github.com/kagiso-dev/thriftbales-backend/internal/bales"
	"github.com/kagiso-dev/thriftbales-backend/internal/categories"
	"github.com/kagiso-dev/thriftbales-backend/internal/contact"
	"github.com/kagiso-dev/thriftbales-backend/internal/marketing"
	"github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/internal/stock"
	"github.com/kagiso-dev/thriftbales-backend/internal/verification"
	"github.com/kagiso-dev/thriftbales-backend/pkg/auth/session"
	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/metrics"
	"github.com/kagiso-dev/thriftbales-backend/pkg/paystack"
	"github.com/kagiso-dev/thriftbales-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	ordersService orders.Service,
	balesService bales.Service,
	stockService stock.Service,
	categoriesService categories.Service,
	marketingService marketing.Service,
	verificationService verification.Service,
	contactService contact.Service,
	paystackVerifier paystack.Verifier,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
		})

		r.Route("/bales", func(r chi.Router) {
			r.Get("/", controllers.ListPublishedBales(balesService, logg))
			r.Get("/{baleId}", controllers.GetBale(balesService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(categoriesService, logg))
			r.Get("/{categoryId}", controllers.GetCategory(categoriesService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(redisClient, logg)).Post("/", controllers.CreateOrder(ordersService, paystackVerifier, logg))
			r.Get("/track/{orderNumber}", controllers.TrackOrder(ordersService, logg))
		})

		r.Post("/cart/quote", controllers.QuoteCart(logg))
		r.Post("/payments/paystack/verify", controllers.VerifyPaystackPayment(paystackVerifier, logg))
		r.Post("/contact", controllers.SubmitContactForm(contactService, logg))

		r.Route("/verification", func(r chi.Router) {
			r.Post("/pin", controllers.SendVerificationPIN(verificationService, logg))
			r.Post("/pin/verify", controllers.VerifyPIN(verificationService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/auth/register", controllers.AuthRegisterAdmin(authService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(ordersService, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
				r.Post("/{orderId}/status", controllers.AdminAdvanceStatus(ordersService, logg))
				r.Post("/{orderId}/payment", controllers.AdminUpdatePayment(ordersService, logg))
				r.Post("/{orderId}/note", controllers.AdminSendNote(ordersService, logg))
				r.Post("/{orderId}/reminder", controllers.AdminSendReminder(ordersService, logg))
				r.Delete("/{orderId}", controllers.AdminDeleteOrder(ordersService, logg))
			})

			r.Route("/stock", func(r chi.Router) {
				r.Get("/", controllers.AdminListStockItems(stockService, logg))
				r.Post("/", controllers.AdminCreateStockItem(stockService, logg))
				r.Get("/{itemId}", controllers.AdminGetStockItem(stockService, logg))
				r.Patch("/{itemId}", controllers.AdminUpdateStockItem(stockService, logg))
				r.Delete("/{itemId}", controllers.AdminDeleteStockItem(stockService, logg))
				r.Post("/{itemId}/images", controllers.AdminUploadStockImage(stockService, logg))
				r.Delete("/{itemId}/images/{imageId}", controllers.AdminRemoveStockImage(stockService, logg))
				r.Post("/{itemId}/images/{imageId}/primary", controllers.AdminSetPrimaryStockImage(stockService, logg))
			})

			r.Route("/bales", func(r chi.Router) {
				r.Get("/", controllers.AdminListBales(balesService, logg))
				r.Post("/", controllers.AdminCreateBale(balesService, logg))
				r.Post("/reorder", controllers.AdminReorderBales(balesService, logg))
				r.Get("/{baleId}", controllers.GetBale(balesService, logg))
				r.Patch("/{baleId}", controllers.AdminUpdateBale(balesService, logg))
				r.Delete("/{baleId}", controllers.AdminDeleteBale(balesService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.ListCategories(categoriesService, logg))
				r.Post("/", controllers.AdminCreateCategory(categoriesService, logg))
				r.Patch("/{categoryId}", controllers.AdminUpdateCategory(categoriesService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(categoriesService, logg))
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", controllers.AdminListCampaigns(marketingService, logg))
				r.Post("/", controllers.AdminCreateCampaign(marketingService, logg))
				r.Get("/{campaignId}", controllers.AdminGetCampaign(marketingService, logg))
				r.Patch("/{campaignId}", controllers.AdminUpdateCampaign(marketingService, logg))
				r.Delete("/{campaignId}", controllers.AdminDeleteCampaign(marketingService, logg))
				r.Post("/{campaignId}/send", controllers.AdminSendCampaign(marketingService, logg))
			})
		})
	})

	return r
}
