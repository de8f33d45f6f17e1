// Package agent answers insurance queries by chaining intent classification,
// knowledge retrieval, context assembly, generation and reply parsing.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"insurance-agent/internal/agent/generator"
	"insurance-agent/internal/agent/intent"
	"insurance-agent/internal/agent/parser"
	"insurance-agent/internal/agent/retriever"
	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/models"
)

type Retriever interface {
	Search(ctx context.Context, query string, limit int) []models.KnowledgeChunk
}

type Assembler interface {
	Assemble(ctx context.Context, intent models.Intent, callerContext map[string]interface{}) string
}

type Generator interface {
	Generate(ctx context.Context, in generator.Input) string
}

type ResponseParser interface {
	Parse(raw, originalQuery string) models.AgentResponse
}

// ClassifierFunc maps query text to an intent.
type ClassifierFunc func(text string) models.Intent

type Config struct {
	RetrievalLimit int
	Timeout        time.Duration // 0 leaves the caller's deadline alone
}

type Agent struct {
	config    Config
	classify  ClassifierFunc
	retriever Retriever
	assembler Assembler
	generator Generator
	parser    ResponseParser
	logger    logger.Logger
}

type Option func(*Agent)

func WithClassifier(fn ClassifierFunc) Option {
	return func(a *Agent) {
		a.classify = fn
	}
}

func WithParser(p ResponseParser) Option {
	return func(a *Agent) {
		a.parser = p
	}
}

func WithLogger(l logger.Logger) Option {
	return func(a *Agent) {
		a.logger = logger.Component(l, "agent")
	}
}

func New(cfg Config, r Retriever, asm Assembler, gen Generator, opts ...Option) *Agent {
	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = retriever.DefaultLimit
	}
	a := &Agent{
		config:    cfg,
		classify:  intent.Classify,
		retriever: r,
		assembler: asm,
		generator: gen,
		parser:    parser.New(parser.DefaultVoiceTextLimit, nil),
		logger:    logger.Component(nil, "agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessAgentQuery always returns a response with four non-blank fields.
// Any unexpected failure yields the fixed "need more information" reply.
func (a *Agent) ProcessAgentQuery(ctx context.Context, query string, callerContext map[string]interface{}) (resp models.AgentResponse) {
	start := time.Now()
	intentLabel := "unknown"

	defer func() {
		if rec := recover(); rec != nil {
			resp = a.catastrophic(rec)
		}
		metrics.AgentQueries.WithLabelValues(intentLabel).Inc()
		metrics.AgentQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer("insurance-agent/agent").Start(ctx, "agent.ProcessAgentQuery",
		trace.WithAttributes(attribute.Int("query.length", len(query))))
	defer span.End()

	in := a.classify(query)
	intentLabel = string(in.Type)
	span.SetAttributes(attribute.String("intent", intentLabel))

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		chunks     []models.KnowledgeChunk
		additional string
		stageErr   error
	)
	stage := func(name string, fn func()) {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				mu.Lock()
				stageErr = fmt.Errorf("%s: %v", name, rec)
				mu.Unlock()
			}
		}()
		fn()
	}

	wg.Add(2)
	go stage("retrieve", func() {
		found := a.retriever.Search(ctx, query, a.config.RetrievalLimit)
		mu.Lock()
		chunks = found
		mu.Unlock()
	})
	go stage("assemble", func() {
		block := a.assembler.Assemble(ctx, in, callerContext)
		mu.Lock()
		additional = block
		mu.Unlock()
	})
	wg.Wait()

	if stageErr != nil {
		return a.catastrophic(stageErr)
	}

	raw := a.generator.Generate(ctx, generator.Input{
		Query:             query,
		RAGContext:        retriever.JoinContent(chunks),
		AdditionalContext: additional,
		Intent:            in,
	})

	resp = a.parser.Parse(raw, query)
	if !resp.Complete() {
		return a.catastrophic("parsed response has a blank field")
	}

	a.logger.Debug("agent query answered", map[string]interface{}{
		"intent":     intentLabel,
		"chunks":     len(chunks),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return resp
}

func (a *Agent) catastrophic(cause interface{}) models.AgentResponse {
	metrics.CatastrophicFailures.Inc()
	a.logger.Error("agent query failed", apperrors.NewCatastrophicFailureError(cause).Fields())
	return parser.NeedMoreInformation()
}
