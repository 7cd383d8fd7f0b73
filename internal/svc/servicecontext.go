package svc

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	appcache "riskgrid/internal/cache"
	"riskgrid/internal/config"
	"riskgrid/internal/model"
	"riskgrid/internal/repo"
	"riskgrid/pkg/engine"
	"riskgrid/pkg/journal"
	"riskgrid/pkg/marketdata"
	"riskgrid/pkg/trade"
)

type ServiceContext struct {
	Config config.Config

	MarketDataConfig *marketdata.Config
	Scenarios        marketdata.ScenarioDefinition
	Runner           *engine.Runner
	Journal          *journal.Writer

	// Optional DB wiring; without a DSN the quote source is file-backed.
	DBConn      sqlx.SqlConn
	QuotesModel model.QuotesModel
	QuoteRepo   *repo.QuoteRepo
}

func NewServiceContext(c config.Config) *ServiceContext {
	mdCfg, err := c.BuildMarketDataConfig()
	if err != nil {
		log.Fatalf("failed to build market data config: %v", err)
	}

	fileSource, err := repo.LoadFileSource(c.DataPath)
	if err != nil {
		log.Fatalf("failed to load file quote source: %v", err)
	}

	svc := &ServiceContext{
		Config:           c,
		MarketDataConfig: mdCfg,
		Scenarios:        c.ScenarioDefinition(),
		Journal:          journal.NewWriter(c.Engine.JournalDir),
	}

	var source marketdata.ObservableSource = fileSource

	// Only wire Postgres when a DSN is provided; the file source still
	// backstops observables the database does not hold. The cached model
	// needs Redis; without it the plain model runs the same queries
	// uncached.
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn

		var quoteCache cache.Cache
		if c.Redis.Host != "" {
			cacheConf := cache.CacheConf{{RedisConf: c.Redis, Weight: 100}}
			svc.QuotesModel = model.NewQuotesModel(conn, cacheConf)
			quoteCache = cache.New(cacheConf, syncx.NewSingleFlight(), cache.NewStat(appcache.Namespace), model.ErrNotFound)
		} else {
			svc.QuotesModel = model.NewQuotesModelNoCache(conn)
		}
		svc.QuoteRepo = repo.NewQuoteRepo(svc.QuotesModel, quoteCache, fileSource, appcache.NewTTLSet(c.TTL))
		source = svc.QuoteRepo
	}

	builder := &marketdata.Builder{
		Registry: marketdata.StandardRegistry(),
		Mappings: c.BuildMappings(),
		Source:   source,
		Workers:  c.Engine.BuildWorkers,
	}
	svc.Runner = &engine.Runner{
		Rules:   trade.DefaultPricingRules(),
		Builder: builder,
		Config:  mdCfg,
		Workers: c.Engine.Workers,
	}
	return svc
}
