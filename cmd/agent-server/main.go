// cmd/agent-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"insurance-agent/internal/api"
	"insurance-agent/internal/bootstrap"
	"insurance-agent/internal/common/aws"
	"insurance-agent/internal/common/camunda"
	"insurance-agent/internal/common/config"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/common/observability"
	"insurance-agent/internal/compliance"

	paq "insurance-agent/internal/workers/agent/process-agent-query"
	sam "insurance-agent/internal/workers/communication/send-agent-message"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, zapLog, bootstrap.DefaultOptions()); err != nil {
		zapLog.Error("agent server failed", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	_ = zapLog.Sync()
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg *config.Config, zapLog *zap.Logger, opts bootstrap.Options) error {
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting agent server...")

	obs := observability.New(cfg.Observability.ServiceName, observability.Options{
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, log, opts)
	if err != nil {
		return fmt.Errorf("agent wiring failed: %w", err)
	}
	defer app.Close()

	checker := compliance.NewChecker(cfg.Notifications.ComplianceKeywords)

	if cfg.Camunda.Enabled {
		zb, err := camunda.NewClient(ctx, cfg.Camunda)
		if err != nil {
			return fmt.Errorf("zeebe client failed: %w", err)
		}
		defer zb.Close()
		app.Backends["zeebe"] = zb

		workers := startWorkers(ctx, cfg, app, checker, zb, obs, log)
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
		defer func() {
			zapLog.Info("Stopping workers...")
			for _, w := range workers {
				w.Close()
			}
		}()
	}

	server := api.NewServer(api.Config{
		Version: cfg.App.Version,
		Timeout: config.GetDuration(cfg.Agent.RequestTimeout),
	}, app.Agent, checker, app.Backends, log, api.WithQueryRecorder(obs))

	if err := server.Run(ctx, cfg.HTTP.Address); err != nil {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	zapLog.Info("Shutdown signal received")
	return nil
}

func startWorkers(ctx context.Context, cfg *config.Config, app *bootstrap.App, checker *compliance.Checker, zb *camunda.Client, obs *observability.Observability, log logger.Logger) []worker.JobWorker {
	var started []worker.JobWorker
	add := func(w worker.JobWorker) {
		if w != nil {
			started = append(started, w)
		}
	}

	queryCfg := config.GetWorkerConfig(cfg, paq.TaskType)
	queryHandler := paq.NewHandler(&paq.Config{
		Timeout: config.GetDuration(queryCfg.Timeout),
	}, app.Agent, obs, log)
	add(camunda.StartWorker(zb.Zeebe(), paq.TaskType, queryCfg, queryHandler.Handle, obs, log))

	msgCfg := config.GetWorkerConfig(cfg, sam.TaskType)
	if !msgCfg.Enabled {
		return started
	}

	sesClient, snsClient, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		log.Error("AWS clients unavailable, send-agent-message not started", map[string]interface{}{
			"error": err.Error(),
		})
		return started
	}

	var mailer sam.EmailSender
	if cfg.Notifications.Email.Enabled {
		mailer = aws.NewMailer(sesClient, cfg.Notifications.Email.FromEmail)
	}
	var texter sam.SMSSender
	if cfg.Notifications.SMS.Enabled {
		texter = aws.NewTexter(snsClient, cfg.Notifications.SMS.SenderID)
	}

	msgHandler := sam.NewHandler(&sam.Config{
		EmailEnabled:   cfg.Notifications.Email.Enabled,
		SMSEnabled:     cfg.Notifications.SMS.Enabled,
		DefaultSubject: sam.DefaultSubject,
		Timeout:        config.GetDuration(msgCfg.Timeout),
	}, mailer, texter, checker, log)
	add(camunda.StartWorker(zb.Zeebe(), sam.TaskType, msgCfg, msgHandler.Handle, obs, log))

	return started
}
