package tasks

import (
	"encoding/json"
	"time"

	"moveline/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendReminder = "reminder:send"
	TypeSendFollowUp = "followup:send"
)

// NewReminderTask builds the reminder for a booking. The task id is derived
// from the booking so a repeated enqueue is rejected by the queue.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// NewFollowUpTask builds the follow-up SMS for a call that ended without a booking.
func NewFollowUpTask(payload models.FollowUpPayload, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendFollowUp, b)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.TaskID("followup:" + payload.CallSID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}
