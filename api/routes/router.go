package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelierhq/atelier-backend/api/controllers"
	webhookcontrollers "github.com/atelierhq/atelier-backend/api/controllers/webhooks"
	"github.com/atelierhq/atelier-backend/api/middleware"
	"github.com/atelierhq/atelier-backend/internal/artists"
	"github.com/atelierhq/atelier-backend/internal/artworks"
	checkoutsvc "github.com/atelierhq/atelier-backend/internal/checkout"
	"github.com/atelierhq/atelier-backend/internal/connect"
	"github.com/atelierhq/atelier-backend/internal/fees"
	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/payouts"
	"github.com/atelierhq/atelier-backend/internal/venues"
	stripewebhook "github.com/atelierhq/atelier-backend/internal/webhooks/stripe"
	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/db"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/redis"
	"github.com/atelierhq/atelier-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface needs. main builds the
// graph once and hands it over; nothing here reaches for globals.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Registry     *prometheus.Registry
	StripeClient *stripe.Client

	FeeResolver     *fees.Resolver
	ArtistsService  artists.Service
	VenuesService   venues.Service
	ArtworksService artworks.Service
	ConnectService  *connect.Service
	CheckoutService *checkoutsvc.Service
	PayoutsService  *payouts.Service
	OrdersRepo      orders.Repository

	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookService, p.StripeClient, p.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/plans", controllers.PlanList(p.FeeResolver, logg))

		r.Route("/artists", func(r chi.Router) {
			r.Get("/", controllers.ArtistList(p.ArtistsService, logg))
			r.Route("/{artistId}", func(r chi.Router) {
				r.Put("/", controllers.ArtistUpsert(p.ArtistsService, logg))
				r.Get("/", controllers.ArtistDetail(p.ArtistsService, logg))
				r.Route("/connect", func(r chi.Router) {
					r.Post("/account", controllers.ConnectCreateAccount(p.ConnectService, enums.RecipientTypeArtist, "artistId", logg))
					r.Post("/link", controllers.ConnectCreateLink(p.ConnectService, enums.RecipientTypeArtist, "artistId", logg))
					r.Get("/status", controllers.ConnectStatus(p.ConnectService, enums.RecipientTypeArtist, "artistId", logg))
				})
			})
		})

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", controllers.VenueList(p.VenuesService, logg))
			r.Route("/{venueId}", func(r chi.Router) {
				r.Put("/", controllers.VenueUpsert(p.VenuesService, logg))
				r.Get("/", controllers.VenueDetail(p.VenuesService, logg))
				r.Route("/connect", func(r chi.Router) {
					r.Post("/account", controllers.ConnectCreateAccount(p.ConnectService, enums.RecipientTypeVenue, "venueId", logg))
					r.Post("/link", controllers.ConnectCreateLink(p.ConnectService, enums.RecipientTypeVenue, "venueId", logg))
					r.Get("/status", controllers.ConnectStatus(p.ConnectService, enums.RecipientTypeVenue, "venueId", logg))
				})
			})
		})

		r.Route("/artworks", func(r chi.Router) {
			r.Post("/", controllers.ArtworkCreate(p.ArtworksService, logg))
			r.Get("/", controllers.ArtworkList(p.ArtworksService, logg))
			r.Get("/{artworkId}", controllers.ArtworkDetail(p.ArtworksService, logg))
		})

		r.Post("/checkout", controllers.Checkout(p.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.OrdersRepo, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.OrdersRepo, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/reconcile", controllers.AdminReconcileAll(p.PayoutsService, logg))
			r.Post("/{orderId}/reconcile-payouts", controllers.AdminReconcileOrderPayouts(p.PayoutsService, p.OrdersRepo, logg))
		})
	})

	return r
}
