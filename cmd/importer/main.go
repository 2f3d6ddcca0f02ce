package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/andresuchdata/sellerdash/backend-go/internal/storage"
	"github.com/andresuchdata/sellerdash/backend-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newTenantFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "tenant",
		Usage:    "Tenant (user) id the import belongs to",
		Required: true,
		EnvVars:  []string{"IMPORT_TENANT_ID"},
	}
}

func initDB(c *cli.Context) error {
	cfg := config.Load()
	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db, nil
}

func tenantFrom(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("tenant"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q", c.String("tenant"))
	}
	return id, nil
}

func readFiles(paths []string) ([]*domain.UploadedFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	files := make([]*domain.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, &domain.UploadedFile{Filename: filepath.Base(p), Data: data})
	}
	return files, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func importService(c *cli.Context) (*service.ImportService, error) {
	db, err := dbFrom(c)
	if err != nil {
		return nil, err
	}
	cfg := config.Load()

	opts, err := service.EngineOptions(cfg.Import)
	if err != nil {
		return nil, err
	}
	if policy := c.String("dedup"); policy != "" {
		if opts.DedupPolicy, err = importer.ParseDedupPolicy(policy); err != nil {
			return nil, err
		}
	}

	archive, err := storage.New(c.Context, cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("object storage unavailable, archiving disabled")
		archive = storage.Noop{}
	}

	engine := importer.NewEngine(postgres.NewOrderRepository(db), opts)
	return service.NewImportService(engine, postgres.NewImportRunRepository(db), archive, cfg.Import.ParseWorkers), nil
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(c.Context, db); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

func runOrders(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	svc, err := importService(c)
	if err != nil {
		return err
	}

	res, err := svc.ImportOrders(c.Context, tenant, files)
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func runPreview(c *cli.Context) error {
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	cfg := config.Load()
	opts, err := service.EngineOptions(cfg.Import)
	if err != nil {
		return err
	}

	// Preview never touches the store.
	svc := service.NewImportService(importer.NewEngine(nil, opts), nil, nil, cfg.Import.ParseWorkers)
	plan, err := svc.Preview(c.Context, files)
	if err != nil {
		return err
	}
	return printJSON(c, plan)
}

func runReplay(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	runID, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid run id %q", c.Args().First())
	}
	svc, err := importService(c)
	if err != nil {
		return err
	}

	res, err := svc.Replay(c.Context, tenant, runID)
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func runRuns(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	svc, err := importService(c)
	if err != nil {
		return err
	}
	runs, err := svc.ListRuns(c.Context, tenant, c.Int("limit"))
	if err != nil {
		return err
	}
	return printJSON(c, runs)
}

func runShipping(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("shipping expects exactly one ledger file")
	}
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	svc := service.NewShippingService(postgres.NewShippingRepository(db))
	res, err := svc.Import(c.Context, tenant, files[0], c.Bool("persist"))
	if err != nil {
		return err
	}
	return printJSON(c, res)
}

func runVariants(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	svc := service.NewOrderService(postgres.NewOrderRepository(db))
	variants, err := svc.ListVariants(c.Context, tenant, c.Int("limit"), c.Int("offset"))
	if err != nil {
		return err
	}
	return printJSON(c, variants)
}

func runVariantCost(c *cli.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return err
	}
	if c.NArg() != 2 {
		return fmt.Errorf("usage: variant-cost VARIANT_ID COST (or \"clear\")")
	}

	var cost *decimal.Decimal
	if raw := c.Args().Get(1); raw != "clear" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid cost %q: %w", raw, err)
		}
		cost = &d
	}

	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	svc := service.NewOrderService(postgres.NewOrderRepository(db))
	n, err := svc.SetVariantCost(c.Context, tenant, c.Args().First(), cost)
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"variant_id":      c.Args().First(),
		"cost_per_unit":   cost,
		"orders_repriced": n,
	})
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.LogLevel)

	dbURLFlag := &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (overrides DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}

	app := &cli.App{
		Name:  "importer",
		Usage: "Import marketplace order and shipping exports",
		Flags: []cli.Flag{dbURLFlag},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:      "orders",
				Usage:     "Reconcile one batch of order export files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					newTenantFlag(),
					&cli.StringFlag{
						Name:  "dedup",
						Usage: "Line item dedup policy (merge or prefer_richer)",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runOrders,
			},
			{
				Name:      "preview",
				Usage:     "Show derived orders without writing anything",
				ArgsUsage: "FILE...",
				Action:    runPreview,
			},
			{
				Name:      "replay",
				Usage:     "Re-import the archived files of an earlier run",
				ArgsUsage: "RUN_ID",
				Flags:     []cli.Flag{newTenantFlag()},
				Before:    initDB,
				After:     closeDB,
				Action:    runReplay,
			},
			{
				Name:  "runs",
				Usage: "List recent import runs",
				Flags: []cli.Flag{
					newTenantFlag(),
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Before: initDB,
				After:  closeDB,
				Action: runRuns,
			},
			{
				Name:  "variants",
				Usage: "List cost variants with their unit costs",
				Flags: []cli.Flag{
					newTenantFlag(),
					&cli.IntFlag{Name: "limit", Value: 100},
					&cli.IntFlag{Name: "offset"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runVariants,
			},
			{
				Name:      "variant-cost",
				Usage:     "Set a variant's unit cost and re-price its orders",
				ArgsUsage: "VARIANT_ID COST|clear",
				Flags:     []cli.Flag{newTenantFlag()},
				Before:    initDB,
				After:     closeDB,
				Action:    runVariantCost,
			},
			{
				Name:      "shipping",
				Usage:     "Clean a shipping label ledger",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					newTenantFlag(),
					&cli.BoolFlag{
						Name:  "persist",
						Usage: "Store detailed labels for the tenant",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runShipping,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("importer failed")
	}
}
