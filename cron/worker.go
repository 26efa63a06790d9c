package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moveline/config"
	"moveline/models"
	"moveline/services/notification"
	"moveline/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// SMSSender is the part of the notification service the worker needs.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// RedisOpt returns the asynq connection for the task queue database.
func RedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisTaskQueueDB,
	}
}

// NewTaskMux routes reminder and follow-up tasks to their handlers.
func NewTaskMux(sms SMSSender, company notification.Company, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(sms, company, logger))
	mux.HandleFunc(tasks.TypeSendFollowUp, HandleFollowUpTask(sms, company, logger))
	return mux
}

// NewTaskServer builds the asynq server with the configured concurrency.
func NewTaskServer(cfg config.Config, logger *zap.Logger) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
}

// InitTaskWorker runs the task worker in the background, retrying start-up
// with a growing delay.
func InitTaskWorker(cfg config.Config, sms SMSSender, company notification.Company, logger *zap.Logger) *asynq.Server {
	srv := NewTaskServer(cfg, logger)
	mux := NewTaskMux(sms, company, logger)

	go func() {
		logger.Info("Starting task worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Task worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Task worker giving up after max attempts")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func HandleReminderTask(sms SMSSender, company notification.Company, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("HandleReminderTask: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("Sending move reminder", zap.String("bookingID", p.BookingID), zap.String("moveDate", p.MoveDate))
		if err := sms.SendSMS(ctx, p.Phone, notification.ReminderSMS(p, company)); err != nil {
			logger.Error("Failed to send reminder", zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

func HandleFollowUpTask(sms SMSSender, company notification.Company, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.FollowUpPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid follow-up payload", zap.Error(err))
			return fmt.Errorf("HandleFollowUpTask: %v: %w", err, asynq.SkipRetry)
		}
		if p.Phone == "" {
			logger.Warn("Follow-up without phone, dropping", zap.String("callSID", p.CallSID))
			return nil
		}

		if err := sms.SendSMS(ctx, p.Phone, notification.FollowUpSMS(p, company)); err != nil {
			logger.Error("Failed to send follow-up", zap.String("callSID", p.CallSID), zap.Error(err))
			return err
		}
		return nil
	}
}
