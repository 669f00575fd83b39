package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/julien-rg/wheelbase-server/internal/application/auth"
	"github.com/julien-rg/wheelbase-server/internal/application/follow"
	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/application/user"
	"github.com/julien-rg/wheelbase-server/internal/config"
	infraauth "github.com/julien-rg/wheelbase-server/internal/infrastructure/auth"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/database"
	httprouter "github.com/julien-rg/wheelbase-server/internal/infrastructure/http"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/handlers"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/middleware"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/persistence/postgres"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	userRepo := postgres.NewUserRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	issuer, err := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), time.Duration(cfg.JWT.ExpirySecs)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("create token issuer")
	}

	engine := policy.NewEngine(userRepo, followRepo)
	registerUC := auth.NewRegister(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer)
	changePasswordUC := auth.NewChangePassword(userRepo, hasher)
	userSvc := user.NewService(userRepo, engine)
	followSvc := follow.NewService(userRepo, followRepo)

	usersHandler := handlers.NewUsersHandler(registerUC, loginUC, changePasswordUC, userSvc, followSvc, engine, log)
	healthHandler := handlers.NewHealthHandler(pool)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.CORS.AllowedOrigins)
	actor := middleware.NewActorResolver(issuer).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		UsersHandler:  usersHandler,
		HealthHandler: healthHandler,
		Actor:         actor,
		Log:           log,
		Secure:        secureMiddleware,
		CORS:          corsMiddleware,
		IPRateLimit:   ipLimit,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
