package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedbot/config"
	"schedbot/database"
	meetingRepo "schedbot/database/repository/meeting"
	sessionRepo "schedbot/database/repository/session"
	"schedbot/handlers"
	"schedbot/middleware"
	"schedbot/routes"
	"schedbot/services/calendar"
	"schedbot/services/dialogue"
	"schedbot/services/extractor"
	"schedbot/services/scheduling"
	"schedbot/services/tasks"
	"schedbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitTokenCache()

	loc := config.Location()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	sessions := sessionRepo.NewRedisStore(utils.GetSessionCacheClient(), config.SessionTTL())
	meetings := meetingRepo.NewMongoMeetingRepo()
	tokens := calendar.NewRedisTokenStore(utils.GetTokenCacheClient(), 30*24*time.Hour)

	// services.
	oauthCfg := calendar.NewGoogleOAuthConfig(
		config.AppConfig.GoogleClientID,
		config.AppConfig.GoogleClientSecret,
		config.AppConfig.GoogleRedirectURL,
	)
	calendarSvc := calendar.NewGoogleCalendarService(oauthCfg, tokens, loc, logger)

	engine := scheduling.NewEngine(loc, config.AppConfig.BusinessDayStart, config.AppConfig.BusinessDayEnd, logger)

	var extractorSvc extractor.Extractor = extractor.NewRegexExtractor(loc)
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gem, err := extractor.NewGeminiExtractor(key, extractor.NewRegexExtractor(loc), logger)
		if err != nil {
			logger.Sugar().Warnf("main: Gemini unavailable, using pattern extractor only: %v", err)
		} else {
			extractorSvc = gem
		}
	}

	queueClient := asynq.NewClient(tasks.RedisQueueOpt())
	defer queueClient.Close()
	reminderScheduler := tasks.NewScheduler(queueClient, 30*time.Minute, logger)
	tasks.InitReminderWorker(meetings, logger)

	dialogueSvc := &dialogue.DefaultDialogueService{
		Extractor: extractorSvc,
		Sessions:  sessions,
		Calendar:  calendarSvc,
		Engine:    engine,
		Meetings:  meetings,
		Reminders: reminderScheduler,
		Logger:    logger,
	}

	chatHandler := handlers.NewChatHandler(dialogueSvc, logger)
	voiceHandler := handlers.NewVoiceChatHandler(dialogueSvc, logger)
	authHandler := handlers.NewAuthHandler(oauthCfg, tokens, calendarSvc, logger)
	meetingsHandler := handlers.NewMeetingsHandler(meetings, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:      chatHandler.Handle,
		VoiceChatHandler: voiceHandler.Handle,

		CreateSessionHandler: handlers.CreateSessionHandler,

		GoogleAuthorizeHandler: authHandler.Authorize,
		GoogleCallbackHandler:  authHandler.Callback,
		AuthStatusHandler:      authHandler.Status,

		ListMeetingsHandler:  meetingsHandler.List,
		DeleteMeetingHandler: meetingsHandler.Delete,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetTokenCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
