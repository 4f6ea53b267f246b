package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/brewbot-backend/api/controllers"
	"github.com/angelmondragon/brewbot-backend/api/middleware"
	"github.com/angelmondragon/brewbot-backend/pkg/config"
	"github.com/angelmondragon/brewbot-backend/pkg/logger"
	"github.com/angelmondragon/brewbot-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	eventRouter controllers.EventRouter,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/webhook", func(r chi.Router) {
		r.Get("/", controllers.VerifyWebhook(cfg.Messenger.VerifyToken))
		r.Post("/", controllers.ReceiveWebhook(eventRouter, redisClient, cfg.Session.EventDedup, logg))
	})

	return r
}
