package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"boardshoot-server/internal/cache"
	"boardshoot-server/internal/handler"
	"boardshoot-server/internal/middleware"
	"boardshoot-server/internal/repository"
	"boardshoot-server/internal/service"
	"boardshoot-server/internal/storage"
	"boardshoot-server/internal/websocket"
	"boardshoot-server/pkg/jwt"

	"github.com/spf13/cobra"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateOnStart {
		if err := repository.NewMigration(cfg.Database.DSN(), nil).Up(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := repository.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("connected to database")

	var mirror cache.Mirror = cache.Disabled{}
	if cfg.Redis.Enabled() {
		client := cache.NewClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		userMirror := cache.NewUserMirror(client, cfg.Redis.UserTTL, log)
		if err := userMirror.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("user cache unreachable, continuing without it")
		}
		mirror = userMirror
	}

	relay := storage.NewRelay(storage.Config{
		URL:        cfg.Storage.URL,
		APIKey:     cfg.Storage.APIKey,
		ServiceKey: cfg.Storage.ServiceKey,
		Bucket:     cfg.Storage.Bucket,
		Timeout:    cfg.Storage.Timeout,
	}, log)
	if !cfg.Storage.Enabled() {
		log.Warn().Msg("object storage not configured, images will be embedded as data URLs")
	}

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
		log,
	)
	go wsManager.Run(ctx)

	userRepo := repository.NewUserRepository(pool)
	folderRepo := repository.NewFolderRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)

	codec := jwt.NewCodec(cfg.JWT.Secret, cfg.JWT.Expiration)
	resolver := service.NewPrincipalResolver(userRepo, cfg.Auth.AllowAnonymous, cfg.Auth.AnonymousUserID, log)
	if cfg.Auth.AllowAnonymous {
		log.Warn().Int64("user_id", cfg.Auth.AnonymousUserID).Msg("anonymous requests act as the fallback user")
	}

	authService := service.NewAuthService(userRepo, codec, mirror)
	userService := service.NewUserService(userRepo, folderRepo, noteRepo, relay, mirror, codec, log)
	folderService := service.NewFolderService(folderRepo, noteRepo, relay, wsManager, log)
	noteService := service.NewNoteService(folderRepo, noteRepo, userRepo, relay, wsManager, log)

	router := handler.NewRouter(handler.Handlers{
		Auth:   handler.NewAuthHandler(authService, log),
		User:   handler.NewUserHandler(userService, resolver, log),
		Folder: handler.NewFolderHandler(folderService, resolver, log),
		Note:   handler.NewNoteHandler(noteService, resolver, log),
		Cache:  handler.NewCacheHandler(mirror, resolver, cfg.Redis.ExposeKeys, log),
		Health: handler.NewHealthHandler(pool, mirror),
		WS: handler.NewWebSocketHandler(
			wsManager,
			resolver,
			cfg.WebSocket.ReadBufferSize,
			cfg.WebSocket.WriteBufferSize,
			log,
		),
	},
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders),
		middleware.Authenticate(codec, resolver, log),
		middleware.LoggerMiddleware(log),
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("starting boardshoot server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}
