package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignatzorin/roastblame-backend/internal/config"
	"github.com/ignatzorin/roastblame-backend/internal/db"
	"github.com/ignatzorin/roastblame-backend/internal/events"
	"github.com/ignatzorin/roastblame-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/roastblame-backend/internal/http/handlers"
	"github.com/ignatzorin/roastblame-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/roastblame-backend/internal/http/router"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/repository"
	"github.com/ignatzorin/roastblame-backend/internal/service"
	"github.com/ignatzorin/roastblame-backend/internal/storage"
	"github.com/ignatzorin/roastblame-backend/internal/storage/localstore"
	"github.com/ignatzorin/roastblame-backend/internal/wallet"
	"github.com/ignatzorin/roastblame-backend/internal/ws"
)

const sessionCleanupInterval = time.Hour

// repositories - набор хранилищ выбранного драйвера.
type repositories struct {
	users   service.UserRepository
	posts   service.PostRepository
	reports service.ReportRepository
	admin   service.AdminRepository
	crypto  service.CryptoRepository
	ping    httpHandlers.Pinger
	close   func() error
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.L().Fatalf("main: ошибка подключения к хранилищу: %v", err)
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.L().Errorf("main: ошибка закрытия хранилища: %v", err)
		}
	}()

	// Демонстрационные роасты попадают только в пустое хранилище.
	seedService := service.NewSeedService(repos.posts)
	if cfg.SeedDemoPosts {
		seeded, err := seedService.SeedDemoPosts(ctx)
		if err != nil {
			logger.L().Warnf("main: не удалось засеять демо посты: %v", err)
		} else if seeded > 0 {
			logger.L().Infof("main: добавлено демо постов: %d", seeded)
		}
	}

	mediaStorage, err := storage.NewMediaStorage(cfg.MediaStoragePath, httpRouter.MediaURLPrefix)
	if err != nil {
		logger.L().Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	rateStore, closeRateStore, err := middleware.NewRateLimitStore(cfg.RedisURL)
	if err != nil {
		logger.L().Fatalf("main: %v", err)
	}
	defer func() { _ = closeRateStore() }()

	// События и вебсокеты.
	bus := events.NewBus(events.NewLoggerAdapter(logger.L()))
	defer func() { _ = bus.Close() }()

	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)

	if err := events.NewForwarder(bus, hub).Start(ctx); err != nil {
		logger.L().Fatalf("main: не удалось подписаться на события: %v", err)
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(repos.users, repos.admin, tokenManager)
	postService := service.NewPostService(repos.posts, repos.users, repos.admin, mediaStorage, bus)
	reportService := service.NewReportService(repos.reports, repos.posts, repos.admin, bus)
	adminService := service.NewAdminService(repos.admin, repos.users)
	provider := wallet.NewProvider(cfg.EthRPCURL)
	defer func() { _ = provider.Close() }()
	cryptoService := service.NewCryptoService(repos.crypto, repos.posts, repos.admin, provider, service.CryptoConfig{
		ContractAddress: cfg.NFTContractAddress,
	})

	// Фоновые задачи.
	service.StartPeriodic(ctx, "session cleanup", sessionCleanupInterval, authService.CleanupSessions)
	if cfg.EthRPCURL != "" {
		service.StartPeriodic(ctx, "tx confirmation", cfg.EthConfirmInterval, cryptoService.ConfirmPending)
	}

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	postHandler := httpHandlers.NewPostHandler(postService)
	reportHandler := httpHandlers.NewReportHandler(reportService)
	adminHandler := httpHandlers.NewAdminHandler(adminService, postService)
	cryptoHandler := httpHandlers.NewCryptoHandler(cryptoService)
	wsHandler := httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(map[string]httpHandlers.Pinger{
		"storage": repos.ping,
	})
	seedHandler := httpHandlers.NewSeedHandler(seedService, postService)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, tokenManager, rateStore, mediaStorage,
		authHandler, postHandler, reportHandler, adminHandler, cryptoHandler, wsHandler, healthHandler, seedHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L().Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.L().WithField("driver", cfg.StorageDriver).Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L().Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// openRepositories подключает хранилище, выбранное STORAGE_DRIVER.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.StorageDriver == config.StorageDriverPostgres {
		// Подключение к базе и миграции.
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			_ = dbConn.Close()
			return nil, err
		}

		return &repositories{
			users:   repository.NewUserRepository(dbConn),
			posts:   repository.NewPostRepository(dbConn),
			reports: repository.NewReportRepository(dbConn),
			admin:   repository.NewAdminRepository(dbConn),
			crypto:  repository.NewCryptoRepository(dbConn),
			ping:    dbConn.PingContext,
			close:   dbConn.Close,
		}, nil
	}

	store, err := localstore.Open(cfg.BoltPath)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:   localstore.NewUserRepository(store),
		posts:   localstore.NewPostRepository(store),
		reports: localstore.NewReportRepository(store),
		admin:   localstore.NewAdminRepository(store),
		crypto:  localstore.NewCryptoRepository(store),
		ping:    func(context.Context) error { return store.Ping() },
		close:   store.Close,
	}, nil
}
