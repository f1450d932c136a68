package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Hari1275/sdp-sub002/internal/auth"
	"github.com/Hari1275/sdp-sub002/internal/clients/google"
	"github.com/Hari1275/sdp-sub002/internal/config"
	"github.com/Hari1275/sdp-sub002/internal/reports"
	"github.com/Hari1275/sdp-sub002/internal/route"
	"github.com/Hari1275/sdp-sub002/internal/session"
	"github.com/Hari1275/sdp-sub002/internal/stream"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	maps := google.NewClient(s.Cfg.GoogleAPIKey, s.Cfg.GoogleBaseURL)
	engine := route.NewCalculator(maps, maps, route.NewCache(s.Cfg.RouteCacheSize))

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	session.RegisterRoutes(s.App.Group("/sessions"), session.NewService(s.DB, engine, s.Stream), jwtMiddleware)
	reports.RegisterRoutes(s.App.Group("/reports"), reports.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
