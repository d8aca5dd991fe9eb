package main

import (
	"context"

	"go.uber.org/zap"

	"goalboard/config"
	"goalboard/internal/db"
	"goalboard/internal/handler"
	"goalboard/internal/httpserver"
	"goalboard/internal/repository"
	"goalboard/internal/service"
	"goalboard/pkg/logger"
	"goalboard/pkg/mq"
	"goalboard/pkg/outbox"
	pkgredis "goalboard/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis
	redisClient := pkgredis.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	// 4. Init RabbitMQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("MQ publisher initialization failed", zap.Error(err))
	}
	defer publisher.Close()

	// 5. Init outbox dispatcher
	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	replayService := outbox.NewReplayService(outboxRepo, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	// 6. Init repositories
	participantRepo := repository.NewParticipantRepository(dbConn, outboxRepo, log)
	boardRepo := repository.NewBoardRepository(dbConn, outboxRepo, log)
	categoryRepo := repository.NewCategoryRepository(dbConn, outboxRepo, log)
	goalRepo := repository.NewGoalRepository(dbConn, outboxRepo, log)
	commentRepo := repository.NewCommentRepository(dbConn, outboxRepo, log)

	boardStore := repository.NewBoardCache(boardRepo, participantRepo, redisClient, cfg.Redis.CacheTTL, log)

	// 7. Init services
	boardService := service.NewBoardService(boardStore, participantRepo, log)
	categoryService := service.NewCategoryService(categoryRepo, participantRepo, log)
	goalService := service.NewGoalService(goalRepo, categoryRepo, participantRepo, log)
	commentService := service.NewCommentService(commentRepo, goalRepo, log)

	// 8. Init handlers
	boardHandler := handler.NewBoardHandler(boardService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	goalHandler := handler.NewGoalHandler(goalService)
	commentHandler := handler.NewCommentHandler(commentService)
	adminHandler := handler.NewAdminHandler(replayService, log)

	// 9. Init router
	router := httpserver.NewRouter(boardHandler, categoryHandler, goalHandler, commentHandler, adminHandler, cfg.JWT.Secret, dbConn, log)

	// 10. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
