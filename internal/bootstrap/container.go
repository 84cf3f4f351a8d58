package bootstrap

import (
	"context"
	"log"

	"intelliview-be/internal/config"
	"intelliview-be/internal/controller"
	"intelliview-be/internal/handler"
	"intelliview-be/internal/pkg/logger"
	"intelliview-be/internal/pkg/mailer"
	"intelliview-be/internal/pkg/serverutils"
	"intelliview-be/internal/repository/cache"
	"intelliview-be/internal/repository/implementation"
	"intelliview-be/internal/repository/memory"
	"intelliview-be/internal/service"
	"intelliview-be/internal/websocket"
	interviewEvents "intelliview-be/pkg/interview/events"
	"intelliview-be/pkg/interview/live"
	"intelliview-be/pkg/interview/vision"
	"intelliview-be/pkg/judge"
	"intelliview-be/pkg/llm/factory"
	pktNats "intelliview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	InterviewController controller.IInterviewController
	ReportController    controller.IReportController

	// WebSockets
	InterviewHandler *handler.InterviewHandler
	WebSocketHub     *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	MonitorService      *service.MonitorService

	SystemLogger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	interviewLogger := logger.NewIsolatedLogger(cfg.App.InterviewLogPath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Event Bus (in-process hand-off of finished interviews)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// a nil *Publisher must not reach the interface
	var bus interviewEvents.Bus
	if natsPub != nil {
		bus = natsPub
	}
	eventPublisher := interviewEvents.NewBusPublisher(bus, sysLogger)

	// 4. AI Providers
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:  cfg.Ai.LLMProvider,
		Model:     cfg.Ai.LLMModel,
		APIKey:    cfg.Keys.GoogleGemini,
		OllamaURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	analyzer := vision.NewGeminiAnalyzer(cfg.Keys.GoogleGemini, cfg.Ai.VisionModel)
	executor := judge.NewJudge0Client(cfg.Interview.Judge0URL, cfg.Keys.Judge0, cfg.Keys.Judge0Host, cfg.Interview.JudgeTimeout)

	// 5. Repositories
	sessionRegistry := memory.NewSessionRegistry()
	snapshotRepo := memory.NewSnapshotRepository(cfg.Interview.SnapshotTTL)
	reportRepo := implementation.NewInterviewReportRepository(db)
	reportCache := cache.NewReportCache(rdb, cfg.Interview.ReportCacheTTL)

	// 6. Services
	publisherService := service.NewPublisherService(service.FinishedInterviewTopic, pubSub)
	evaluationService := service.NewEvaluationService(llmProvider, sysLogger)
	reportService := service.NewReportService(
		evaluationService,
		reportRepo,
		reportCache,
		snapshotRepo,
		eventPublisher,
		sysLogger,
	)
	consumerService := service.NewConsumerService(pubSub, service.FinishedInterviewTopic, reportService, sysLogger)
	interviewService := service.NewInterviewService(
		judge.DefaultBank(),
		executor,
		analyzer,
		sessionRegistry,
		snapshotRepo,
		eventPublisher,
		sysLogger,
	)

	// 7. Live Interview Bridge
	bridge := websocket.NewBridge(
		live.NewWSDialer(cfg.Interview.LiveURL, cfg.Keys.GoogleGemini, cfg.Interview.ConnectTimeout),
		analyzer,
		sessionRegistry,
		snapshotRepo,
		publisherService,
		eventPublisher,
		interviewLogger,
		websocket.Options{
			LiveModel:             cfg.Interview.LiveModel,
			Voice:                 cfg.Interview.Voice,
			HandshakeTimeout:      cfg.Interview.HandshakeTimeout,
			MaxConcurrentAnalyses: cfg.Interview.MaxConcurrentAnalyses,
			MaxPendingAnalyses:    cfg.Interview.MaxPendingAnalyses,
		},
	)
	wsHub := websocket.NewHub(rdb, interviewLogger)

	// 8. Event Subscribers
	var notificationService *service.NotificationService
	var monitorService *service.MonitorService
	if natsSub != nil {
		notificationService = service.NewNotificationService(reportRepo, natsSub, emailService, cfg.Interview.HRNotificationEmail, sysLogger)
		monitorService = service.NewMonitorService(natsSub, wsHub, interviewLogger)
	}

	c := &Container{
		InterviewController: controller.NewInterviewController(interviewService),
		ReportController:    controller.NewReportController(reportService, serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret)),
		InterviewHandler:    handler.NewInterviewHandler(bridge, wsHub, cfg.Keys.JwtSecret, interviewLogger),
		WebSocketHub:        wsHub,

		ConsumerService:     consumerService,
		NotificationService: notificationService,
		MonitorService:      monitorService,

		SystemLogger: sysLogger,
	}

	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	if natsSub != nil {
		c.closers = append(c.closers, natsSub.Close)
	}
	if natsPub != nil {
		c.closers = append(c.closers, natsPub.Close)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return c
}

// Close releases broker and cache connections in reverse order of use.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}
