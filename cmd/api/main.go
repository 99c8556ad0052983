package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Mantenimiento-api/docs"
	"github.com/jhoicas/Mantenimiento-api/internal/application/debt"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/settlement"
	"github.com/jhoicas/Mantenimiento-api/internal/application/transfer"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	access.SetGlobalRoles(cfg.Maintenance.GlobalRoles)

	m := metrics.New("mantenimiento")

	ctx := context.Background()
	txRunner, closeStore := openStore(ctx, cfg, log, m)
	defer closeStore()

	ledger := inventory.NewLedger(txRunner, log, m)
	engine := settlement.NewEngine(ledger, log, m)
	maintenanceSvc := maintenance.NewService(txRunner, engine, maintenance.Config{
		ApprovalThreshold: cfg.Maintenance.ApprovalThreshold,
	}, log, m)
	debtUC := debt.NewUseCase(txRunner, log, m)
	transferUC := transfer.NewUseCase(txRunner, log, m)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Mantenimiento API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Maintenance: maintenanceSvc,
		Ledger:      ledger,
		Debts:       debtUC,
		Transfers:   transferUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Log:         log,
		Metrics:     m,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore arma el almacenamiento según STORE_DRIVER y devuelve cómo cerrarlo.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (ports.TxRunner, func()) {
	var err error
	if cfg.App.StoreDriver == "memory" {
		log.Warn().Msg("usando almacenamiento en memoria; los datos se pierden al reiniciar")
		parts := memory.DemoCatalog()
		if cfg.App.SeedFile != "" {
			if parts, err = memory.LoadCatalog(cfg.App.SeedFile); err != nil {
				log.Fatal().Err(err).Msg("catálogo de repuestos")
			}
		}
		store := memory.NewStore()
		store.SeedCatalog(parts)
		log.Info().Int("parts", len(parts)).Msg("catálogo de repuestos cargado")
		return store, func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	return postgres.NewTxRunner(pool, m), pool.Close
}
