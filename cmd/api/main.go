package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crmapi/docs"
	"crmapi/internal/auth"
	"crmapi/internal/cache"
	"crmapi/internal/config"
	"crmapi/internal/database"
	"crmapi/internal/database/migration"
	handlers "crmapi/internal/http/handler"
	"crmapi/internal/http/middleware"
	"crmapi/internal/logger"
	"crmapi/internal/mailer"
	"crmapi/internal/otel"
	"crmapi/internal/repository/postgres"
	"crmapi/internal/schema"
	"crmapi/internal/seed"
	"crmapi/internal/service"
	"crmapi/internal/storage"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

const shutdownTimeout = 15 * time.Second

// @title CRM API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.Location(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize token issuer")
	}

	fieldCache, err := cache.NewFieldCache(cfg.FieldCacheSize)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize field cache")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}
	workflowMetrics, err := workflow.NewMetrics(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register workflow metrics")
	}

	// Repositories
	objectRepo := postgres.NewObjectPostgres(db)
	fieldRepo := postgres.NewFieldPostgres(db)
	recordRepo := postgres.NewRecordPostgres(db)
	relationRepo := postgres.NewRelationPostgres(db)
	workflowRepo := postgres.NewWorkflowPostgres(db)
	projectRepo := postgres.NewProjectPostgres(db)
	taskRepo := postgres.NewTaskPostgres(db)
	timeRepo := postgres.NewTimeEntryPostgres(db)
	calendarRepo := postgres.NewCalendarPostgres(db)
	templateRepo := postgres.NewEmailTemplatePostgres(db)
	notificationRepo := postgres.NewNotificationPostgres(db)
	commentRepo := postgres.NewCommentPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	codeRepo := postgres.NewEmailCodePostgres(db)

	seeder, err := seed.NewSeeder(objectRepo, fieldRepo)
	if err != nil {
		log.WithError(err).Fatal("failed to load default objects")
	}

	mail := mailer.New(cfg.SMTP, log)
	v := validation.New()

	executor := workflow.NewExecutor(workflow.Deps{
		Workflows:     workflowRepo,
		Objects:       objectRepo,
		Records:       recordRepo,
		Schema:        schema.New(fieldRepo, fieldCache, v),
		Tasks:         taskRepo,
		Notifications: notificationRepo,
		Templates:     templateRepo,
		Mailer:        mail,
		HTTPClient:    workflow.NewWebhookClient(cfg.Workflow.WebhookTimeout),
	}, cfg.Workflow.Concurrency, log, workflowMetrics)

	svc := handlers.Services{
		Auth:           service.NewAuthService(userRepo, codeRepo, seeder, tokens, mail, cfg.Auth, log),
		Objects:        service.NewObjectService(objectRepo, fieldCache),
		Fields:         service.NewFieldService(objectRepo, fieldRepo, fieldCache),
		Records:        service.NewRecordService(objectRepo, fieldRepo, recordRepo, fieldCache, executor, v),
		Relations:      service.NewRelationService(recordRepo, relationRepo),
		Workflows:      service.NewWorkflowService(workflowRepo, objectRepo, recordRepo, executor, v),
		Projects:       service.NewProjectService(projectRepo),
		Tasks:          service.NewTaskService(taskRepo, projectRepo, notificationRepo, log),
		TimeEntries:    service.NewTimeEntryService(timeRepo),
		Calendar:       service.NewCalendarService(calendarRepo),
		EmailTemplates: service.NewEmailTemplateService(templateRepo, mail),
		Notifications:  service.NewNotificationService(notificationRepo),
		Comments:       service.NewCommentService(commentRepo, recordRepo, taskRepo, projectRepo, notificationRepo, log),
		Files:          service.NewFileService(objStore, fileRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    32 * 1024 * 1024,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())
	app.Use(otelfiber.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, svc)

	if cfg.StaticDir != "" {
		app.Use(middleware.SPA(cfg.StaticDir))
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithField("addr", addr).Info("http server listening")
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	executor.Wait()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.WithError(err).Warn("tracer shutdown")
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("close database")
	}
}
