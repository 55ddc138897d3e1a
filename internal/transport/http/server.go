package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"openlab/internal/cache"
	"openlab/internal/config"
	"openlab/internal/database"
	"openlab/internal/handler"
	"openlab/internal/queue"
	"openlab/internal/redis"
	"openlab/internal/repository"
	"openlab/internal/service"
	"openlab/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole application together and serves HTTP until the
// process receives SIGINT or SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	actionRepo := repository.NewActionRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Redis-backed infrastructure
	publisher := queue.NewPublisher(rdb.Client)
	consumer := queue.NewConsumer(rdb.Client)
	leaderboard := cache.NewLeaderboardCache(rdb.Client)

	// Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, projectRepo, cfg.DefaultAvatarURL)
	followService := service.NewFollowService(followRepo, userRepo, publisher)
	projectService := service.NewProjectService(projectRepo, userRepo, publisher)
	commentService := service.NewCommentService(commentRepo, projectRepo, userRepo, publisher)
	groupService := service.NewGroupService(groupRepo, userRepo, publisher)
	rankingService := service.NewRankingService(userRepo, leaderboard)
	activityService := service.NewActivityService(actionRepo)
	feedService := service.NewFeedService(projectRepo, followRepo)
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// Activity log workers consume the event stream in the background
	manager := worker.NewManager(consumer, worker.NewHandler(actionRepo), worker.ManagerConfig{
		WorkerCount: cfg.ActivityWorkerCount,
	})
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start activity workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService),
		UserHandler:     handler.NewUserHandler(userService),
		FollowHandler:   handler.NewFollowHandler(followService),
		ProjectHandler:  handler.NewProjectHandler(projectService),
		CommentHandler:  handler.NewCommentHandler(commentService),
		GroupHandler:    handler.NewGroupHandler(groupService),
		RankingHandler:  handler.NewRankingHandler(rankingService),
		ActivityHandler: handler.NewActivityHandler(activityService),
		FeedHandler:     handler.NewFeedHandler(feedService),
		MediaHandler:    handler.NewMediaHandler(mediaService, userService),
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigin:   cfg.AllowedOrigin,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("[Server] Stopped")
	return nil
}
