// internal/bootstrap/model.go
package bootstrap

import (
	"context"
	"time"

	"insurance-agent/internal/providers"
)

// timeoutModel bounds every provider call.
type timeoutModel struct {
	providers.Model
	timeout time.Duration
}

func withTimeout(m providers.Model, d time.Duration) providers.Model {
	if d <= 0 {
		return m
	}
	return &timeoutModel{Model: m, timeout: d}
}

func (m *timeoutModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.Model.Generate(ctx, prompt)
}

func (m *timeoutModel) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.Model.Embed(ctx, text)
}
