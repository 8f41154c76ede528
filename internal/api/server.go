package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sunbird/internal/cache"
	"sunbird/internal/config"
	"sunbird/internal/database"
	"sunbird/internal/external"
	"sunbird/internal/handlers"
	"sunbird/internal/lifecycle"
	"sunbird/internal/logger"
	"sunbird/internal/messaging"
	"sunbird/internal/middleware"
	"sunbird/internal/repository"
	"sunbird/internal/search"
	"sunbird/internal/service"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	locker   *cache.BookingLocker
	services *service.Services
	machine  *lifecycle.Machine
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	locker, err := cache.NewBookingLocker(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	// Поиск не критичен для бронирований, без него стартуем без discovery
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Get().Error("Elasticsearch unavailable, discovery disabled", "error", err)
		esClient = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, esClient, paymentClient, natsClient)
	machine := lifecycle.NewMachine(repos.Bookings, repos.Occurrences, paymentClient, locker, natsClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		locker:   locker,
		services: services,
		machine:  machine,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.machine)

	api := s.router.Group("/api")
	{
		activities := api.Group("/activities")
		{
			activities.GET("", h.ListActivities)
			activities.GET("/:id/occurrences", h.ListOccurrences)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:reference", h.GetBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}

		// Операторские действия под Basic Auth
		operator := api.Group("", middleware.OperatorAuth(s.repos.Operators))
		{
			operator.POST("/activities", h.CreateActivity)
			operator.POST("/occurrences", h.CreateOccurrence)
			operator.PATCH("/bookings/confirm", h.ConfirmBooking)
			operator.PATCH("/bookings/decline", h.DeclineBooking)
			operator.PATCH("/bookings/capture", h.CaptureBooking)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/notifications", h.OnPaymentUpdates)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "sunbird-api",
		"version":  "1.0.0",
		"database": health,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.locker != nil {
		if err := s.locker.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
