package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog_backend/internal/config"
	"blog_backend/internal/handler"
	"blog_backend/internal/logging"
	"blog_backend/internal/repository"
	"blog_backend/internal/service"
	"blog_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type storage struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	ping     func(ctx context.Context) error
	close    func()
}

func main() {
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "development", "info").Error(context.Background(), "failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()
	if envErr != nil {
		log.Info(ctx, "no .env file found, relying on environment variables")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	// --- Utilities ---
	jwtUtil, err := utils.NewJWTUtil(cfg.JWTSecretKey, cfg.JWTValidity)
	if err != nil {
		return err
	}
	hasher, err := utils.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	// --- Storage ---
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// --- Services ---
	authService := service.NewAuthService(store.users, hasher, jwtUtil, log, cfg.InitialAdminUsername)
	postService := service.NewPostService(store.posts, hasher, log)
	commentService := service.NewCommentService(store.posts, store.comments, log)
	adminService := service.NewUserAdminService(store.users, log)

	// --- Router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Auth:               authService,
		Posts:              postService,
		Comments:           commentService,
		Admin:              adminService,
		Tokens:             jwtUtil,
		Users:              store.users,
		Ping:               store.ping,
		Log:                log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitEnabled:   cfg.RateLimitEnabled,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "port", cfg.ServerPort, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info(ctx, "server exiting")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log logging.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &storage{
			users:    mem.Users(),
			posts:    mem.Posts(),
			comments: mem.Comments(),
			close:    func() {},
		}, nil
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, err
	}
	pool, err := config.ConnectDB(ctx, dbCfg, log)
	if err != nil {
		return nil, err
	}
	if err := config.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &storage{
		users:    repository.NewUserRepository(pool),
		posts:    repository.NewPostRepository(pool),
		comments: repository.NewCommentRepository(pool),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}
