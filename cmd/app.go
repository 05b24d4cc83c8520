package cmd

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/goodfoods-agent/agent/agents/orchestrator"
	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	"github.com/tanpawarit/goodfoods-agent/agent/dispatch"
	"github.com/tanpawarit/goodfoods-agent/agent/intent"
	"github.com/tanpawarit/goodfoods-agent/agent/llm"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
	configx "github.com/tanpawarit/goodfoods-agent/pkg/config"
	"github.com/tanpawarit/goodfoods-agent/pkg/database"
	"github.com/tanpawarit/goodfoods-agent/server"
)

// AppConfig is read with the APP prefix.
type AppConfig struct {
	CatalogPath string `envconfig:"CATALOG_PATH" split_words:"true"`
	ListLimit   int    `envconfig:"LIST_LIMIT" split_words:"true" default:"200"`

	server.Config
}

type app struct {
	cfg     *AppConfig
	db      *bun.DB
	catalog *catalogx.Catalog
	store   *reservationx.Store
}

func loadAppConfig() (*AppConfig, error) {
	return configx.New[AppConfig]("APP")
}

// openApp loads config, the catalog and the migrated reservation store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	dbCfg, err := configx.New[database.Config]("DB")
	if err != nil {
		return nil, err
	}

	catalog, err := catalogx.Open(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	db, err := database.Open(*dbCfg)
	if err != nil {
		return nil, err
	}

	store, err := reservationx.NewStore(db, catalog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{cfg: cfg, db: db, catalog: catalog, store: store}, nil
}

func (a *app) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newOrchestrator builds the message pipeline on top of the opened store.
func (a *app) newOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	llmCfg, err := configx.New[llm.Config]("OPENROUTER")
	if err != nil {
		return nil, err
	}

	intents := intent.Default()
	caller, err := llm.NewCaller(ctx, *llmCfg, intents.ToolInfos())
	if err != nil {
		return nil, err
	}

	dispatcher, err := dispatch.New(a.catalog, a.store, dispatch.WithListLimit(a.cfg.ListLimit))
	if err != nil {
		return nil, err
	}

	o, err := orchestrator.New(caller, intents, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}
	return o, nil
}
