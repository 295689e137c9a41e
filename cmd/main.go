package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/authnode/authnode/internal/facades"
	"github.com/authnode/authnode/internal/handlers"
	"github.com/authnode/authnode/internal/jwt"
	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/middlewares"
	"github.com/authnode/authnode/internal/repositories"
	"github.com/authnode/authnode/internal/services"

	_ "github.com/authnode/authnode/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title authnode API
// @version 1.0.0
// @description Authentication API with JWT sessions and one-time password reset codes
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel, storeFile,
		jwtSecret, jwtExpSecond,
		kafkaBrokers, kafkaTopic,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel, storeFile,
		jwtSecret, jwtExpSecond,
		kafkaBrokers, kafkaTopic,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, store, JWT and Kafka configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel, storeFile string,
	jwtSecretKey string, jwtExpSecond int,
	kafkaBrokers, kafkaTopic string,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Store config
	storeFile = getEnv("STORE_FILE", "users.json")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "86400")); err != nil {
		return
	}

	// Kafka config; empty brokers switch the notifier to log-only mode
	kafkaBrokers = getEnv("KAFKA_BROKERS", "")
	kafkaTopic = getEnv("KAFKA_OTP_TOPIC", "auth.otp")

	return
}

// run initializes the logger, the user store, the notifier and the HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel, storeFile string,
	jwtSecretKey string, jwtExpSecond int,
	kafkaBrokers, kafkaTopic string,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Initialize the user store
	userRepo := repositories.NewUserRepository(storeFile)
	if err := userRepo.Init(ctx); err != nil {
		logger.Log.Errorw("failed to initialize user store", "path", storeFile, "error", err)
		return err
	}

	// Initialize JWT service
	jwtSvc := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize the OTP notifier
	var notifier services.OTPNotifier
	if kafkaBrokers != "" {
		writer := &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(kafkaBrokers, ",")...),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer writer.Close()
		notifier = facades.NewKafkaOTPNotifier(writer)
		logger.Log.Infof("OTP notifier publishing to Kafka topic %s", kafkaTopic)
	} else {
		notifier = facades.NewLogOTPNotifier()
		logger.Log.Warn("Kafka brokers not configured, OTP codes will be logged")
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, userRepo, jwtSvc, notifier)

	// Initialize handlers
	signupHandler := handlers.NewSignupHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	forgotPasswordHandler := handlers.NewForgotPasswordHandler(authService)
	resetPasswordHandler := handlers.NewResetPasswordHandler(authService)
	profileHandler := handlers.NewProfileHandler(authService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware())

	r.Route("/api/auth", func(r chi.Router) {
		// Public routes
		r.Post("/signup", signupHandler)
		r.Post("/login", loginHandler)
		r.Post("/forgot-password", forgotPasswordHandler)
		r.Post("/reset-password", resetPasswordHandler)

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(jwtSvc))
			r.Get("/profile", profileHandler)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, buildVersion)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
