// internal/workers/communication/send-agent-message/handler.go
package sendagentmessage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "insurance-agent/internal/common/errors"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/metrics"
	"insurance-agent/internal/common/validation"
	"insurance-agent/internal/compliance"
	"insurance-agent/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-agent-message"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type ComplianceChecker interface {
	Check(text string) compliance.Result
}

type Handler struct {
	config  *Config
	mailer  EmailSender
	texter  SMSSender
	checker ComplianceChecker
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
	now     func() time.Time
}

func NewHandler(config *Config, mailer EmailSender, texter SMSSender, checker ComplianceChecker, log logger.Logger) *Handler {
	if checker == nil {
		checker = compliance.NewChecker(nil)
	}
	log = logger.Component(log, TaskType).WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		mailer:  mailer,
		texter:  texter,
		checker: checker,
		logger:  log,
		errors:  apperrors.NewErrorHandler(log),
		now:     time.Now,
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
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func decodeInput(vars []byte) (*Input, error) {
	res := validation.SendMessageSchema.Validate(vars)
	if !res.Valid {
		return nil, apperrors.NewInvalidInputError(fmt.Sprint(res.GetErrorMessages()))
	}

	var input Input
	if err := json.Unmarshal(vars, &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	channel := string(input.Channel)
	out := &Output{Channel: channel}

	var body string
	switch input.Channel {
	case models.ChannelEmail:
		body = input.Response.Email
	case models.ChannelSMS:
		body = input.Response.WhatsApp
	default:
		return nil, apperrors.NewUnsupportedChannelError(channel)
	}

	if res := h.checker.Check(body); !res.IsCompliant {
		h.logger.Warn("message blocked by compliance check", map[string]interface{}{
			"channel": channel,
			"issues":  res.Issues,
		})
		metrics.MessagesSent.WithLabelValues(channel, StatusBlocked).Inc()
		out.MessageID = uuid.New().String()
		out.Status = StatusBlocked
		out.Issues = res.Issues
		out.SentAt = h.timestamp()
		return out, nil
	}

	var (
		id  string
		err error
	)
	switch input.Channel {
	case models.ChannelEmail:
		if !validation.ValidateEmail(input.Recipient.Email) {
			return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid recipient email: %q", input.Recipient.Email))
		}
		if !h.config.EmailEnabled || h.mailer == nil {
			return h.disabled(out), nil
		}
		subject := input.Subject
		if subject == "" {
			subject = h.config.DefaultSubject
		}
		id, err = h.mailer.Send(ctx, input.Recipient.Email, subject, body)

	case models.ChannelSMS:
		if !validation.ValidatePhone(input.Recipient.Phone) {
			return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid recipient phone: %q", input.Recipient.Phone))
		}
		if !h.config.SMSEnabled || h.texter == nil {
			return h.disabled(out), nil
		}
		id, err = h.texter.Send(ctx, input.Recipient.Phone, body)
	}

	if err != nil {
		metrics.MessagesSent.WithLabelValues(channel, "failed").Inc()
		return nil, apperrors.NewNotificationSendFailedError(channel, err)
	}

	if id == "" {
		id = uuid.New().String()
	}
	metrics.MessagesSent.WithLabelValues(channel, StatusSent).Inc()
	h.logger.Info("message sent", map[string]interface{}{
		"channel":   channel,
		"messageId": id,
	})

	out.MessageID = id
	out.Status = StatusSent
	out.SentAt = h.timestamp()
	return out, nil
}

func (h *Handler) disabled(out *Output) *Output {
	metrics.MessagesSent.WithLabelValues(out.Channel, StatusDisabled).Inc()
	out.MessageID = uuid.New().String()
	out.Status = StatusDisabled
	out.SentAt = h.timestamp()
	return out
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
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

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
