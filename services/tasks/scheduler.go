package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moveline/models"

	"github.com/hibiken/asynq"
)

// ReminderHour is the local hour, on the day before the move, the reminder fires.
const ReminderHour = 18

// DefaultFollowUpDelay is how long after a hang-up the follow-up SMS is sent.
const DefaultFollowUpDelay = 10 * time.Minute

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler queues deferred customer messages.
type Scheduler interface {
	ScheduleReminder(ctx context.Context, p models.ReminderPayload) error
	ScheduleFollowUp(ctx context.Context, p models.FollowUpPayload) error
}

// AsynqScheduler enqueues tasks on the asynq queue consumed by the worker.
type AsynqScheduler struct {
	client        Enqueuer
	loc           *time.Location
	followUpDelay time.Duration
	now           func() time.Time
}

func NewAsynqScheduler(client Enqueuer, loc *time.Location) *AsynqScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &AsynqScheduler{client: client, loc: loc, followUpDelay: DefaultFollowUpDelay, now: time.Now}
}

// ReminderTime is ReminderHour on the day before moveDate, or now when that has passed.
func (s *AsynqScheduler) ReminderTime(moveDate string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", moveDate, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("ReminderTime: invalid move date %q: %w", moveDate, err)
	}
	fireAt := day.AddDate(0, 0, -1).Add(ReminderHour * time.Hour)
	if now := s.now(); fireAt.Before(now) {
		return now, nil
	}
	return fireAt, nil
}

func (s *AsynqScheduler) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	_, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, p models.ReminderPayload) error {
	fireAt, err := s.ReminderTime(p.MoveDate)
	if err != nil {
		return err
	}
	task, opts, err := NewReminderTask(p, fireAt)
	if err != nil {
		return fmt.Errorf("ScheduleReminder: %w", err)
	}
	if err := s.enqueue(ctx, task, opts); err != nil {
		return fmt.Errorf("ScheduleReminder: failed to enqueue reminder for %s: %w", p.BookingID, err)
	}
	return nil
}

func (s *AsynqScheduler) ScheduleFollowUp(ctx context.Context, p models.FollowUpPayload) error {
	task, opts, err := NewFollowUpTask(p, s.followUpDelay)
	if err != nil {
		return fmt.Errorf("ScheduleFollowUp: %w", err)
	}
	if err := s.enqueue(ctx, task, opts); err != nil {
		return fmt.Errorf("ScheduleFollowUp: failed to enqueue follow-up for %s: %w", p.CallSID, err)
	}
	return nil
}
