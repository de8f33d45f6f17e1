package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObservability_RecordsWithoutExporters(t *testing.T) {
	obs := New("insurance-agent-test")
	defer obs.Shutdown()

	ctx := context.Background()
	assert.NotNil(t, obs.jobCounter)
	assert.NotNil(t, obs.queryCounter)
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "process-agent-query", "completed")
		obs.RecordJobDuration(ctx, "process-agent-query", 25*time.Millisecond, "completed")
		obs.RecordQuery(ctx, "general", "http")
	})
}

func TestObservability_ZeroAndNil(t *testing.T) {
	var zero Observability
	var nilObs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		zero.RecordQuery(ctx, "report", "cli")
		zero.Shutdown()
		nilObs.RecordJobProcessed(ctx, "send-agent-message", "failed")
		nilObs.RecordJobDuration(ctx, "send-agent-message", time.Second, "failed")
		nilObs.RecordQuery(ctx, "general", "zeebe")
		nilObs.Shutdown()
	})
}
