package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/config"
	"github.com/iliyamo/movie-rental/internal/database"
	"github.com/iliyamo/movie-rental/internal/handler"
	"github.com/iliyamo/movie-rental/internal/logger"
	"github.com/iliyamo/movie-rental/internal/queue"
	"github.com/iliyamo/movie-rental/internal/repository"
	"github.com/iliyamo/movie-rental/internal/router"
	"github.com/iliyamo/movie-rental/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg := config.Load() // exits on missing required vars
	lg := logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DSN())
	if err != nil {
		lg.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig()) // nil disables cache and rate limit
	if rdb != nil {
		defer rdb.Close()
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	genres := repository.NewGenreRepo(db)
	movies := repository.NewMovieRepo(db)
	customers := repository.NewCustomerRepo(db)
	rentals := repository.NewRentalRepo(db)

	var pub service.EventPublisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = service.NewAMQPPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartRentalConsumer(ctx, cfg.AMQPURL, cfg.RentalLogPath); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("rental consumer stopped", "error", err)
			}
		}()
	} else {
		lg.Info("AMQP_URL not set; rental events disabled")
	}

	ledger := service.NewRentalLedger(
		repository.NewSQLLedgerStore(db, movies, customers, rentals),
		pub,
	)

	e := echo.New()
	router.Setup(e, lg, config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), handler.NewUserHandler(users), cfg.JWTSecret)
	cacheCfg := config.LoadCacheConfig()
	router.RegisterCatalog(e, router.Catalog{
		Genres:    handler.NewGenreHandler(genres),
		Movies:    handler.NewMovieHandler(movies, genres),
		Customers: handler.NewCustomerHandler(customers, rentals),
	}, cfg.JWTSecret, cacheCfg, rdb)
	router.RegisterRentals(e, handler.NewRentalHandler(ledger), cfg.JWTSecret, cacheCfg, rdb)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "error", err)
	}
	lg.Info("server stopped")
}
