package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appinventory "github.com/jhoicas/despensa-api/internal/application/inventory"
	apporders "github.com/jhoicas/despensa-api/internal/application/orders"
	"github.com/jhoicas/despensa-api/internal/application/usecase"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
	"github.com/jhoicas/despensa-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/despensa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/despensa-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/despensa-api/internal/interfaces/http"
	"github.com/jhoicas/despensa-api/pkg/config"
	"github.com/jhoicas/despensa-api/pkg/logger"
)

// backend agrupa los puertos de persistencia resueltos en el arranque,
// PostgreSQL o memoria según la configuración.
type backend struct {
	ingredients  repository.IngredientRepository
	lots         repository.LotRepository
	suppliers    repository.SupplierRepository
	orders       repository.PurchaseOrderRepository
	movements    repository.StockMovementRepository
	invTx        appinventory.TxRunner
	ordersTx     apporders.TxRunner
	closeBackend func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := buildBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer be.closeBackend()

	clock := appinventory.SystemClock{}

	ingredientUC := usecase.NewIngredientUseCase(be.ingredients)
	supplierUC := usecase.NewSupplierUseCase(be.suppliers)
	lotUC := appinventory.NewLotUseCase(be.invTx, be.lots, be.ingredients, clock)
	consumeUC := appinventory.NewConsumeUseCase(be.invTx, be.ingredients, clock)
	stockUC := appinventory.NewStockQueryUseCase(be.ingredients, be.lots, clock)
	movementUC := appinventory.NewMovementUseCase(be.invTx, be.movements, be.ingredients, clock)
	fulfillmentUC := apporders.NewFulfillmentUseCase(be.ordersTx, be.orders, be.suppliers, be.ingredients, clock)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	orderPDFUC := apporders.NewPDFUseCase(be.orders, be.suppliers, be.ingredients, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Despensa API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IngredientUC: ingredientUC,
		SupplierUC:   supplierUC,
		LotUC:        lotUC,
		ConsumeUC:    consumeUC,
		StockUC:      stockUC,
		MovementUC:   movementUC,
		Fulfillment:  fulfillmentUC,
		OrderPDF:     orderPDFUC,
	})

	// Barrido periódico de vencidos: reclasifica a Vencido los lotes cuya
	// fecha ya pasó, para que el disponible no los cuente.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Inventory.SweepMinutes > 0 {
		go runExpirySweep(sweepCtx, lotUC, log, time.Duration(cfg.Inventory.SweepMinutes)*time.Minute)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildBackend conecta a PostgreSQL si hay configuración; en development sin
// base de datos cae al store en memoria con una advertencia.
func buildBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if !cfg.DB.Configured() && cfg.App.Env == "development" {
		log.Warn().Msg("sin DATABASE_URL ni DB_PASSWORD: usando store en memoria (solo desarrollo)")
		store := memory.NewStore()
		return &backend{
			ingredients:  store.Ingredients(),
			lots:         store.Lots(),
			suppliers:    store.Suppliers(),
			orders:       store.Orders(),
			movements:    store.Movements(),
			invTx:        store,
			ordersTx:     store,
			closeBackend: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool)
	return &backend{
		ingredients:  postgres.NewIngredientRepository(pool),
		lots:         postgres.NewLotRepository(pool),
		suppliers:    postgres.NewSupplierRepository(pool),
		orders:       postgres.NewPurchaseOrderRepository(pool),
		movements:    postgres.NewStockMovementRepository(pool),
		invTx:        txRunner,
		ordersTx:     txRunner,
		closeBackend: pool.Close,
	}, nil
}

// runExpirySweep ejecuta ReclassifyExpired en cada tick hasta que ctx se cancele.
func runExpirySweep(ctx context.Context, lotUC *appinventory.LotUseCase, log *logger.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			affected, err := lotUC.ReclassifyExpired(ctx, "")
			if err != nil {
				log.Error().Err(err).Msg("barrido de vencidos")
				continue
			}
			if len(affected) > 0 {
				log.Info().Int("lotes", len(affected)).Msg("lotes reclasificados a VENCIDO")
			}
		}
	}
}
