// Package generator produces the raw model reply for a query. A failed or
// empty model call is answered with a local fallback; nothing is retried.
package generator

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/models"
)

// Fallback reasons, used as metric labels.
const (
	ReasonNoModel     = "no_model"
	ReasonRateLimited = "rate_limited"
	ReasonModelError  = "model_error"
	ReasonEmptyReply  = "empty_reply"
	ReasonPanic       = "panic"
)

// TextGenerator is a single-prompt text model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Input struct {
	Query             string
	RAGContext        string
	AdditionalContext string
	Intent            models.Intent
}

type Generator struct {
	model   TextGenerator
	limiter *rate.Limiter
	logger  logger.Logger
}

type Option func(*Generator)

// WithLimiter gates every model call on l. A wait error counts as a model failure.
func WithLimiter(l *rate.Limiter) Option {
	return func(g *Generator) {
		g.limiter = l
	}
}

func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		g.logger = logger.Component(l, "generator")
	}
}

func New(model TextGenerator, opts ...Option) *Generator {
	g := &Generator{
		model:  model,
		logger: logger.Component(nil, "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the model reply, or the fallback text when the model
// cannot answer. The result is never blank.
func (g *Generator) Generate(ctx context.Context, in Input) string {
	ctx, span := otel.Tracer("insurance-agent/agent").Start(ctx, "generator.Generate")
	defer span.End()

	reply, reason, err := g.call(ctx, BuildPrompt(in))
	if err == nil {
		span.SetAttributes(attribute.Bool("generation.fallback", false))
		return reply
	}

	span.SetAttributes(attribute.Bool("generation.fallback", true), attribute.String("generation.reason", reason))
	metrics.GenerationFallbacks.WithLabelValues(reason).Inc()
	g.logger.Warn("model unavailable, using fallback reply",
		apperrors.NewGenerationFailedError(err).WithMetadata("reason", reason).Fields())
	return Fallback(in)
}

func (g *Generator) call(ctx context.Context, prompt string) (reply, reason string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reply, reason, err = "", ReasonPanic, fmt.Errorf("panic: %v", rec)
		}
	}()

	if g.model == nil {
		return "", ReasonNoModel, fmt.Errorf("no text generator configured")
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", ReasonRateLimited, err
		}
	}

	reply, err = g.model.Generate(ctx, prompt)
	if err != nil {
		return "", ReasonModelError, err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ReasonEmptyReply, fmt.Errorf("model returned an empty reply")
	}
	return reply, "", nil
}
