package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"contractdesk/internal/auth"
	"contractdesk/internal/config"
	"contractdesk/internal/handler"
	"contractdesk/internal/mail"
	"contractdesk/internal/repository"
	"contractdesk/internal/service"
	"contractdesk/internal/service/s3"
	"contractdesk/internal/wizard"
)

func connectWithRetry(cfg *config.Config, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	dsn := cfg.Database.GetDSN()

	// Сначала подключаемся к базе postgres (системная база, которая всегда существует)
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Database.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	// Проверяем, существует ли рабочая база данных
	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	// Если базы нет, создаем её
	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Database.Name)
		_, err = pgDB.Exec("CREATE DATABASE " + cfg.Database.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаемся к базе данных
	db, err := connectWithRetry(appConfig, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация S3 клиента для сканов договоров
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Подключение к сервису аутентификации
	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}
	auth.InitClient(authConfig.AuthAddr)

	// Почтовый клиент для уведомлений об истечении сроков
	mailClient := mail.NewClient(mail.LoadConfig())

	// Инициализация репозиториев
	contractRepo := repository.NewContractRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	lineRepo := repository.NewLineRepository(db)
	contentRepo := repository.NewContentRepository(db)
	annexRepo := repository.NewAnnexRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)

	confirmationRepo, err := repository.NewConfirmationRepository(
		appConfig.Redis.Addr,
		appConfig.Redis.Password,
		appConfig.Redis.DB,
	)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer confirmationRepo.Close()

	// Инициализация сервисов
	contractService := service.NewContractService(contractRepo, versionRepo, settingsRepo, s3Client, mailClient)
	versionService := service.NewVersionService(contractRepo, versionRepo)
	sectionService := service.NewSectionService(contractRepo, versionRepo, sectionRepo, lineRepo)
	lineService := service.NewLineService(contractRepo, versionRepo, sectionRepo, lineRepo, contentRepo)
	annexService := service.NewAnnexService(contractRepo, annexRepo, settingsRepo, nil)
	settingsService := service.NewSettingsService(settingsRepo)

	// Визарды жизненного цикла
	signWizard := wizard.NewSignWizard(contractService)
	publishWizard := wizard.NewPublishWizard(versionService)
	versionWizard := wizard.NewVersionWizard(versionService)
	deleteWizard := wizard.NewConfirmDeleteWizard(confirmationRepo, sectionService, lineService)

	// Инициализация хендлеров
	contractHandler := handler.NewContractHandler(contractService, signWizard)
	versionHandler := handler.NewVersionHandler(versionService, publishWizard, versionWizard)
	sectionHandler := handler.NewSectionHandler(sectionService)
	lineHandler := handler.NewLineHandler(lineService)
	annexHandler := handler.NewAnnexHandler(annexService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	partnerHandler := handler.NewPartnerHandler(partnerRepo)
	deletionHandler := handler.NewDeletionHandler(deleteWizard)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("Incoming request: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", contractHandler.CreateContract)
			r.Get("/", contractHandler.ListContracts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", contractHandler.GetContract)
				r.Put("/", contractHandler.UpdateContract)
				r.Delete("/", contractHandler.DeleteContract)

				r.Post("/sign", contractHandler.SignContract)
				r.Post("/unsign", contractHandler.UnsignContract)
				r.Post("/close", contractHandler.CloseContract)
				r.Post("/renew", contractHandler.RenewContract)
				r.Post("/renew-period", contractHandler.RenewContractPeriod)
				r.Post("/copy", contractHandler.CopyContract)

				r.Post("/scan", contractHandler.UploadScan)
				r.Get("/scan", contractHandler.DownloadScan)

				r.Get("/versions", versionHandler.ListVersions)
				r.Post("/versions", versionHandler.CreateVersion)
				r.Get("/versions/publish-options", versionHandler.PublishOptions)
				r.Post("/versions/publish", versionHandler.PublishVersion)
				r.Post("/versions/{versionID}/rollback", versionHandler.RollbackVersion)
			})
		})

		r.Route("/sections", func(r chi.Router) {
			r.Post("/", sectionHandler.CreateSection)
			r.Get("/", sectionHandler.ListSections)
			r.Put("/{id}/rename", sectionHandler.RenameSection)
			r.Post("/{id}/lines", sectionHandler.AddLine)
		})

		r.Route("/lines", func(r chi.Router) {
			r.Get("/", lineHandler.ListLines)
			r.Get("/{id}", lineHandler.GetLine)
			r.Put("/{id}/content", lineHandler.EditContent)
			r.Get("/{id}/history", lineHandler.GetHistory)
			r.Post("/{id}/make-current", lineHandler.MakeCurrent)
		})

		r.Route("/annexes", func(r chi.Router) {
			r.Post("/", annexHandler.CreateAnnex)
			r.Get("/", annexHandler.ListAnnexes)
			r.Get("/{id}", annexHandler.GetAnnex)
			r.Delete("/{id}", annexHandler.DeleteAnnex)
		})

		r.Route("/partners", func(r chi.Router) {
			r.Post("/", partnerHandler.CreatePartner)
			r.Get("/", partnerHandler.ListPartners)
			r.Get("/{id}", partnerHandler.GetPartner)
		})

		r.Route("/deletions", func(r chi.Router) {
			r.Post("/", deletionHandler.RequestDeletion)
			r.Post("/{token}/confirm", deletionHandler.ConfirmDeletion)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
		})
	})

	// Фоновый обход сроков подписанных договоров
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		if err := contractService.CheckContracts(sweepCtx); err != nil {
			log.Printf("Contract expiration check failed: %v", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := contractService.CheckContracts(sweepCtx); err != nil {
					log.Printf("Contract expiration check failed: %v", err)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// HTTP сервер с graceful shutdown
	srv := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sweepCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
