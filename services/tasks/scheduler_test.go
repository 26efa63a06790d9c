package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveline/models"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	got []enqueued
	err error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, enqueued{task: task, opts: opts})
	return &asynq.TaskInfo{}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) interface{} {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func newTestScheduler(q Enqueuer, now time.Time) *AsynqScheduler {
	s := NewAsynqScheduler(q, time.UTC)
	s.now = func() time.Time { return now }
	return s
}

func TestReminderTime(t *testing.T) {
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(&fakeEnqueuer{}, now)

	at, err := s.ReminderTime("2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 20, 18, 0, 0, 0, time.UTC), at)

	at, err = s.ReminderTime("2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, now, at, "a reminder whose time has passed fires immediately")

	_, err = s.ReminderTime("next tuesday")
	assert.Error(t, err)
}

func TestScheduleReminder(t *testing.T) {
	q := &fakeEnqueuer{}
	s := newTestScheduler(q, time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC))

	p := models.ReminderPayload{BookingID: "BOOK-1", Phone: "+12815550100", Name: "John", MoveDate: "2026-10-21", MoveTime: "Morning"}
	require.NoError(t, s.ScheduleReminder(context.Background(), p))
	require.Len(t, q.got, 1)

	task := q.got[0].task
	assert.Equal(t, TypeSendReminder, task.Type())
	var decoded models.ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, p, decoded)
	assert.Equal(t, "reminder:BOOK-1", optionValue(q.got[0].opts, asynq.TaskIDOpt))
	assert.Equal(t, time.Date(2026, time.October, 20, 18, 0, 0, 0, time.UTC), optionValue(q.got[0].opts, asynq.ProcessAtOpt))
}

func TestScheduleFollowUp(t *testing.T) {
	q := &fakeEnqueuer{}
	s := newTestScheduler(q, time.Now())

	require.NoError(t, s.ScheduleFollowUp(context.Background(), models.FollowUpPayload{CallSID: "CA1", Phone: "+12815550100", Name: "John"}))
	require.Len(t, q.got, 1)
	assert.Equal(t, TypeSendFollowUp, q.got[0].task.Type())
	assert.Equal(t, "followup:CA1", optionValue(q.got[0].opts, asynq.TaskIDOpt))
	assert.Equal(t, DefaultFollowUpDelay, optionValue(q.got[0].opts, asynq.ProcessInOpt))
}

func TestSchedule_DuplicateIsNotAnError(t *testing.T) {
	s := newTestScheduler(&fakeEnqueuer{err: asynq.ErrTaskIDConflict}, time.Now())
	assert.NoError(t, s.ScheduleFollowUp(context.Background(), models.FollowUpPayload{CallSID: "CA1"}))

	s = newTestScheduler(&fakeEnqueuer{err: context.DeadlineExceeded}, time.Now())
	assert.Error(t, s.ScheduleFollowUp(context.Background(), models.FollowUpPayload{CallSID: "CA1"}))
}
