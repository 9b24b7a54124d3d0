package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/api"
	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/config"
	"github.com/gsarma/codetester/internal/crypto"
	"github.com/gsarma/codetester/internal/logger"
	"github.com/gsarma/codetester/internal/quiz"
	"github.com/gsarma/codetester/internal/store"
	"github.com/gsarma/codetester/internal/tenant"
	"github.com/gsarma/codetester/internal/worker"
)

func main() {
	cfg, err := config.Load(os.Getenv("CODETESTER_CONFIG"))
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.RootEncryptionKey == "" {
		log.Fatal("ROOT_ENCRYPTION_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()
	if err := store.Migrate(ctx, pool); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}

	enc, err := crypto.NewEncryptor(cfg.RootEncryptionKey)
	if err != nil {
		log.Fatal("initialize encryptor", zap.Error(err))
	}

	langs := code.DefaultCatalog()
	if cfg.LanguagesFile != "" {
		if langs, err = code.LoadCatalog(cfg.LanguagesFile); err != nil {
			log.Fatal("load languages", zap.String("path", cfg.LanguagesFile), zap.Error(err))
		}
	}
	quizzes := quiz.DefaultCatalog()
	if cfg.QuizzesFile != "" {
		if quizzes, err = quiz.LoadCatalog(cfg.QuizzesFile); err != nil {
			log.Fatal("load quizzes", zap.String("path", cfg.QuizzesFile), zap.Error(err))
		}
	}

	var tracker quiz.Tracker = quiz.NewMemoryTracker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		tracker = quiz.NewRedisTracker(rdb, cfg.Redis.SessionTTL)
	} else {
		log.Warn("REDIS_ADDR not set; quiz sessions are kept in memory")
	}

	queries := store.New(pool)
	judge := cfg.Judge0Settings()
	runner := code.NewRunner(code.NewJudge0Provider(judge), code.WithPollConfig(cfg.PollSettings()))

	router := gin.New()
	router.Use(gin.Recovery())
	h := api.RegisterRoutes(router, api.Deps{
		Queries:   queries,
		Tenants:   tenant.NewService(queries, enc),
		Languages: langs,
		Quizzes:   quiz.NewService(quizzes, langs, runner, tracker, log.Named("quiz")),
		Judge0:    judge,
		Poll:      cfg.PollSettings(),
		Logger:    log.Named("api"),
	})

	w := worker.New(queries, h, cfg.Worker.Concurrency, worker.WithLogger(log.Named("worker")))

	switch cfg.Server.Mode {
	case "worker":
		log.Info("starting in worker-only mode")
		w.Start(ctx)
	case "api":
		// API-only: no embedded worker goroutines; scale workers separately.
		log.Info("starting in api-only mode")
		serve(ctx, log, router, cfg.Server.Port)
	default:
		done := make(chan struct{})
		go func() {
			w.Start(ctx)
			close(done)
		}()
		serve(ctx, log, router, cfg.Server.Port)
		<-done
	}
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, log *zap.Logger, handler http.Handler, port string) {
	srv := &http.Server{Addr: ":" + port, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}
}
