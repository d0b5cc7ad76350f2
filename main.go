package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vaidya/internal/config"
	"vaidya/internal/handlers"
	"vaidya/internal/live"
	"vaidya/internal/metrics"
	"vaidya/internal/middleware"
	"vaidya/internal/notify"
	"vaidya/internal/repositories"
	"vaidya/internal/seed"
	"vaidya/internal/services"
	"vaidya/pkg/rabbitmq"
)

// appDeps is everything setupApp needs that talks to the outside world.
type appDeps struct {
	Store     *repositories.Store
	Users     repositories.UserRepository
	Carts     repositories.CartRepository
	Checkouts repositories.CheckoutRepository
	Hub       *live.Hub
	Metrics   *metrics.AppMetrics
	Publisher services.EventPublisher
	Notifier  *notify.Notifier
	Payments  services.PaymentAuthorizer
	Health    func(ctx context.Context) fiber.Map
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Metrics ---
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// --- Relational database (users always, documents when STORE_BACKEND=gorm) ---
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Document store ---
	store := repositories.NewGORMStore(db)
	var mongoClient *mongo.Client
	if cfg.StoreBackend == config.BackendMongo {
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDB := mongoClient.Database(cfg.MongoDatabase)
		if err := repositories.EnsureMongoIndexes(ctx, mongoDB); err != nil {
			log.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
		store = repositories.NewMongoStore(mongoDB)
		log.Printf("Using MongoDB store %s", cfg.MongoDatabase)
	}

	// --- Session store ---
	var (
		carts       repositories.CartRepository
		checkouts   repositories.CheckoutRepository
		redisClosed func() error
	)
	if cfg.RedisURL != "" {
		sessions, err := repositories.NewRedisSessionStore(cfg.RedisURL, "vaidya", cfg.CartTTL, cfg.CheckoutTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		carts, checkouts, redisClosed = sessions.Carts(), sessions.Checkouts(), sessions.Close
	} else {
		log.Println("REDIS_URL not set, sessions are kept in memory")
		sessions := repositories.NewMemorySessionStore()
		carts, checkouts = sessions.Carts(), sessions.Checkouts()
	}

	// --- Seed ---
	if cfg.SeedFile != "" {
		file, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
		if err := seed.Apply(ctx, file, store); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	// --- Order events ---
	notifier := notify.NewNotifier(notify.NewMailer(cfg))
	eventHandler := services.NewOrderEventHandler(store.Orders, notifier)
	var (
		publisher services.EventPublisher = services.InlinePublisher{Handler: eventHandler}
		mqClient  *rabbitmq.Client
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		if err := mqClient.ConsumeOrderEvents(ctx, eventHandler.Handle); err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, order events are handled in-process")
	}

	app := setupApp(cfg, appDeps{
		Store:     store,
		Users:     repositories.NewGORMUserRepository(db),
		Carts:     carts,
		Checkouts: checkouts,
		Hub:       live.NewHub(),
		Metrics:   appMetrics,
		Publisher: publisher,
		Notifier:  notifier,
		Payments:  services.NewSimulatedAuthorizer(cfg.PaymentSimulatedDelay),
		Health: func(ctx context.Context) fiber.Map {
			status := fiber.Map{"store": cfg.StoreBackend, "broker": "inline", "sessions": "memory"}
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["database"] = "unreachable"
			} else {
				status["database"] = "connected"
			}
			if mqClient != nil {
				status["broker"] = "rabbitmq"
			}
			if redisClosed != nil {
				status["sessions"] = "redis"
			}
			return status
		},
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if redisClosed != nil {
		if err := redisClosed(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down meter provider: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured SQL database with GORM error translation enabled.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// setupApp wires services and handlers onto a new Fiber app.
func setupApp(cfg *config.Config, deps appDeps) *fiber.App {
	// --- Initialize Services ---
	productService := services.NewProductService(deps.Store.Products, deps.Hub, deps.Metrics)
	orderService := services.NewOrderService(deps.Store.Orders, deps.Publisher, deps.Hub, deps.Metrics)
	authService := services.NewAuthService(deps.Users, cfg.JWTSecret)
	cartService := services.NewCartService(deps.Carts, deps.Store.Products, cfg.FreeGiftThreshold, deps.Metrics)
	checkoutService := services.NewCheckoutService(deps.Checkouts, deps.Carts, deps.Users, orderService, deps.Payments, deps.Metrics)
	reviewService := services.NewReviewService(deps.Store.Reviews, productService, deps.Hub)
	blogService := services.NewBlogService(deps.Store.Blogs, deps.Hub)
	appointmentService := services.NewAppointmentService(deps.Store.Appointments, deps.Notifier, deps.Hub)
	subscriberService := services.NewSubscriberService(deps.Store.Subscribers, deps.Hub)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, orderService)
	productHandler := handlers.NewProductHandler(productService, reviewService, authService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, authService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	contentHandler := handlers.NewContentHandler(blogService, appointmentService, subscriberService)
	liveHandler := handlers.NewLiveHandler(deps.Hub, map[string]handlers.SnapshotFunc{
		repositories.CollectionProducts: func(ctx context.Context) (interface{}, error) {
			return productService.GetAllProducts(ctx)
		},
		repositories.CollectionOrders: func(ctx context.Context) (interface{}, error) {
			return orderService.GetAllOrders(ctx)
		},
		repositories.CollectionReviews: func(ctx context.Context) (interface{}, error) {
			return reviewService.GetAllReviews(ctx)
		},
		repositories.CollectionBlogs: func(ctx context.Context) (interface{}, error) {
			return blogService.GetAllPosts(ctx)
		},
		repositories.CollectionAppointments: func(ctx context.Context) (interface{}, error) {
			return appointmentService.GetAllAppointments(ctx)
		},
		repositories.CollectionSubscribers: func(ctx context.Context) (interface{}, error) {
			return subscriberService.GetAllSubscribers(ctx)
		},
	}, deps.Metrics)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{AppName: cfg.OTELServiceName})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.SessionHeader + ", " + handlers.IdempotencyHeader,
		ExposeHeaders: middleware.SessionHeader,
	}))
	app.Use(middleware.Metrics(deps.Metrics))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if deps.Health != nil {
			for k, v := range deps.Health(c.UserContext()) {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Session())

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	contentHandler.RegisterRoutes(apiV1)

	// --- Admin Routes (JWT + allow-list) ---
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired(cfg.IsAdmin))
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	contentHandler.RegisterAdminRoutes(admin)
	liveHandler.RegisterAdminRoutes(admin)

	return app
}
