// internal/workers/agent/process-agent-query/handler.go
package processagentquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"insurance-agent/internal/agent/intent"
	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/common/validation"
	"insurance-agent/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "process-agent-query"
)

type QueryProcessor interface {
	ProcessAgentQuery(ctx context.Context, query string, callerContext map[string]interface{}) models.AgentResponse
}

// QueryRecorder counts answered queries by intent and entry point.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, intent, source string)
}

type Handler struct {
	config   *Config
	agent    QueryProcessor
	recorder QueryRecorder
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
}

// NewHandler builds the worker. rec may be nil.
func NewHandler(config *Config, agent QueryProcessor, rec QueryRecorder, log logger.Logger) *Handler {
	log = logger.Component(log, TaskType).WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		agent:    agent,
		recorder: rec,
		logger:   log,
		errors:   apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := decodeInput([]byte(job.Variables))
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeInvalidInput)).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func decodeInput(vars []byte) (*Input, error) {
	res := validation.AgentQuerySchema.Validate(vars)
	if !res.Valid {
		return nil, apperrors.NewInvalidInputError(strings.Join(res.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal(vars, &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, apperrors.NewInvalidInputError("query is required")
	}

	resp := h.agent.ProcessAgentQuery(ctx, input.Query, input.Context)
	if h.recorder != nil {
		h.recorder.RecordQuery(ctx, string(intent.Classify(input.Query).Type), "zeebe")
	}

	return &Output{
		AgentResponse: resp,
		ProcessedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
