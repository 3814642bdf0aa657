package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/compensation-agent/internal/api/http"
	"github.com/spec-kit/compensation-agent/internal/api/http/handlers"
	"github.com/spec-kit/compensation-agent/internal/auth"
	"github.com/spec-kit/compensation-agent/internal/classifier"
	"github.com/spec-kit/compensation-agent/internal/config"
	"github.com/spec-kit/compensation-agent/internal/dedup"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/observability"
	"github.com/spec-kit/compensation-agent/internal/persistence"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/repository/memory"
	"github.com/spec-kit/compensation-agent/internal/service"
	"github.com/spec-kit/compensation-agent/internal/templates"
	"github.com/spec-kit/compensation-agent/internal/transport/whatsapp"
	"github.com/spec-kit/compensation-agent/internal/worker"
)

// repositories groups every store behind its interface so the rest of the
// wiring is identical for the Postgres and in-memory backends.
type repositories struct {
	customers     repository.CustomerRepository
	tickets       repository.TicketRepository
	technicians   repository.TechnicianRepository
	history       repository.TicketHistoryRepository
	states        repository.ConversationStateRepository
	messages      repository.ConversationMessageRepository
	notifications repository.NotificationRepository
	staff         repository.StaffRepository
	tx            repository.TxManager
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, logger)

	dedupTTL := time.Duration(cfg.Workflow.DedupTTLHours) * time.Hour
	var dedupCache dedup.Cache
	if redis.Ping(ctx) == nil {
		dedupCache = dedup.NewRedisCache(redis.Client, dedupTTL)
	} else {
		logger.Warn("redis unavailable; message dedup is process-local")
		dedupCache = dedup.NewMemoryCache(dedupTTL)
	}

	var sender whatsapp.Sender
	if cfg.WhatsApp.AccessToken != "" {
		sender = whatsapp.NewClient(cfg.WhatsApp, logger)
	} else {
		logger.Warn("WHATSAPP_ACCESS_TOKEN not provided; outbound messages are logged only")
		sender = &whatsapp.LoggingSender{Logger: logger}
	}

	dispatcher := events.NewInMemoryDispatcher()
	observability.RegisterEventMetrics(dispatcher, metrics)
	templateCatalog := templates.NewCatalog()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     repos.tickets,
		CustomerRepo:   repos.customers,
		TechnicianRepo: repos.technicians,
		HistoryRepo:    repos.history,
		Tx:             repos.tx,
		Dispatcher:     dispatcher,
	})

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repos.notifications,
		CustomerRepo:     repos.customers,
		TicketRepo:       repos.tickets,
		MessageRepo:      repos.messages,
		Templates:        templateCatalog,
		Sender:           sender,
		Logger:           logger,
		Metrics:          metrics,
		ReminderThrottle: time.Duration(cfg.Worker.ReminderThrottleHours) * time.Hour,
	})
	notificationService.RegisterHandlers(dispatcher)

	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		CustomerRepo:     repos.customers,
		StateRepo:        repos.states,
		MessageRepo:      repos.messages,
		Tickets:          ticketService,
		Classifier:       classifier.NewKeyword(),
		Templates:        templateCatalog,
		Dedup:            dedupCache,
		Dispatcher:       dispatcher,
		Logger:           logger,
		StructuredIntake: cfg.Workflow.StructuredIntake,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	staffService := service.NewStaffService(repos.staff, tokens, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.staff)

	go worker.NewReminderWorker(ticketService, notificationService, cfg.Worker, logger).Run(ctx)
	go worker.NewRetryWorker(notificationService, cfg.Worker, logger).Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhook:        handlers.NewWebhookHandler(workflowService, sender, cfg.WhatsApp.VerifyToken, logger),
		Chat:           handlers.NewChatHandler(workflowService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Technicians:    handlers.NewTechniciansHandler(repos.technicians, ticketService),
		Customers:      handlers.NewCustomersHandler(repos.customers, ticketService),
		Staff:          handlers.NewStaffHandler(staffService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

// buildRepositories picks the Postgres stores when a pool is available and
// falls back to the in-memory stores otherwise. The fallback keeps local
// development working without a database; state does not survive restarts.
func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("running with in-memory stores; data is not persisted")
		return repositories{
			customers:     memory.NewCustomerStore(),
			tickets:       memory.NewTicketStore(),
			technicians:   memory.NewTechnicianStore(),
			history:       memory.NewTicketHistoryStore(),
			states:        memory.NewConversationStateStore(),
			messages:      memory.NewConversationMessageStore(),
			notifications: memory.NewNotificationStore(),
			staff:         memory.NewStaffStore(),
			tx:            memory.NewTxManager(),
		}
	}
	return repositories{
		customers:     repository.NewCustomerRepository(pool),
		tickets:       repository.NewTicketRepository(pool),
		technicians:   repository.NewTechnicianRepository(pool),
		history:       repository.NewTicketHistoryRepository(pool),
		states:        repository.NewConversationStateRepository(pool),
		messages:      repository.NewConversationMessageRepository(pool),
		notifications: repository.NewNotificationRepository(pool),
		staff:         repository.NewStaffRepository(pool),
		tx:            repository.NewTxManager(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
