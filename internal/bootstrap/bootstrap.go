// Package bootstrap builds the agent graph from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"insurance-agent/internal/agent"
	"insurance-agent/internal/agent/contextasm"
	"insurance-agent/internal/agent/embedcache"
	"insurance-agent/internal/agent/generator"
	"insurance-agent/internal/agent/parser"
	"insurance-agent/internal/agent/retriever"
	"insurance-agent/internal/common/config"
	"insurance-agent/internal/common/database"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/providers"
	"insurance-agent/internal/store/crm"
	"insurance-agent/internal/store/knowledge"
)

// Options controls how hard Build tries to reach each backend.
type Options struct {
	ConnectRetries int
	ConnectDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{ConnectRetries: 10, ConnectDelay: 2 * time.Second}
}

// App holds the wired agent and the handles callers need besides it.
type App struct {
	Config     *config.Config
	Agent      *agent.Agent
	Knowledge  *knowledge.PGStore
	Model      providers.Model // nil when the provider could not be built
	Embeddings *embedcache.Cache
	Backends   map[string]database.Pinger

	closers []func() error
	logger  logger.Logger
}

// Build connects every backend and wires the agent. The model provider is
// optional: without it the agent answers from fallback text.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	log = logger.Component(log, "bootstrap")
	app := &App{
		Config:   cfg,
		Backends: make(map[string]database.Pinger),
		logger:   log,
	}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, pg.Close)
	if err := retryWithBackoff(func() error { return pg.Ping(ctx) }, opts, log, "PostgreSQL connection"); err != nil {
		return fail(err)
	}
	app.Backends["postgres"] = pg

	var pool *database.KnowledgePool
	err = retryWithBackoff(func() error {
		var err error
		pool, err = database.NewKnowledgePool(ctx, cfg.KnowledgeURL(), cfg.Knowledge.MaxConnections)
		if err != nil {
			return err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		return nil
	}, opts, log, "knowledge pool connection")
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, pool.Close)
	app.Backends["knowledge"] = pool

	store, err := knowledge.NewPGStore(pool.Pool, cfg.Knowledge.Table)
	if err != nil {
		return fail(err)
	}
	app.Knowledge = store

	var lexical retriever.LexicalSearcher = store
	if cfg.UsesElasticsearch() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return fail(err)
		}
		if err := retryWithBackoff(func() error { return es.Ping(ctx) }, opts, log, "Elasticsearch connection"); err != nil {
			return fail(err)
		}
		app.Backends["elasticsearch"] = es
		lexical = knowledge.NewESSearcher(es.Client, cfg.Knowledge.ElasticsearchIndex)
	}

	model, err := providers.New(ctx, cfg.Model)
	if err != nil {
		log.Warn("model provider unavailable, replies will use fallback text", map[string]interface{}{
			"provider": cfg.Model.Provider,
			"error":    err.Error(),
		})
	} else {
		model = withTimeout(model, config.GetDuration(cfg.Model.Timeout))
		app.Model = model
	}

	var embeddings retriever.EmbeddingSource
	if app.Model != nil {
		cacheOpts := []embedcache.Option{embedcache.WithLogger(log)}
		if cfg.Agent.EmbedCacheRedis {
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return fail(err)
			}
			app.closers = append(app.closers, rdb.Close)
			if err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, opts, log, "Redis connection"); err != nil {
				return fail(err)
			}
			app.Backends["redis"] = rdb
			cacheOpts = append(cacheOpts, embedcache.WithStore(
				embedcache.NewRedisStore(rdb.Client, config.GetDuration(cfg.Agent.EmbedCacheTTL))))
		}
		app.Embeddings = embedcache.New(app.Model, cfg.Agent.EmbedCacheSize, cacheOpts...)
		embeddings = app.Embeddings
	}

	ret := retriever.New(retriever.Config{
		Threshold:    cfg.Knowledge.SimilarityThreshold,
		DefaultLimit: cfg.Agent.RetrievalLimit,
	}, embeddings, store, lexical, store, log)

	asm := contextasm.New(contextasm.Config{
		TopOpportunities: cfg.Agent.TopOpportunities,
		RecentLeads:      cfg.Agent.RecentLeads,
	}, crm.NewStore(pg.DB), log)

	genOpts := []generator.Option{generator.WithLogger(log)}
	if cfg.Model.RateLimit > 0 {
		genOpts = append(genOpts, generator.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Model.RateLimit), cfg.Model.RateBurst)))
	}
	var text generator.TextGenerator
	if app.Model != nil {
		text = app.Model
	}
	gen := generator.New(text, genOpts...)

	app.Agent = agent.New(agent.Config{
		RetrievalLimit: cfg.Agent.RetrievalLimit,
		Timeout:        config.GetDuration(cfg.Agent.RequestTimeout),
	}, ret, asm, gen,
		agent.WithParser(parser.New(cfg.Agent.VoiceTextLimit, log)),
		agent.WithLogger(log),
	)

	log.Info("agent wired", map[string]interface{}{
		"provider":       cfg.Model.Provider,
		"modelAvailable": app.Model != nil,
		"lexicalBackend": cfg.Knowledge.LexicalBackend,
		"redisCache":     cfg.Agent.EmbedCacheRedis,
	})
	return app, nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// retryWithBackoff doubles the delay after each failed attempt.
func retryWithBackoff(operation func() error, opts Options, log logger.Logger, operationName string) error {
	attempts := opts.ConnectRetries
	if attempts <= 0 {
		attempts = 1
	}
	delay := opts.ConnectDelay

	var err error
	for i := 0; i < attempts; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i < attempts-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  attempts,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}
