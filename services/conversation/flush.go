package conversation

import (
	"context"
	"errors"
	"strings"

	"moveline/models"
	"moveline/services/notification"
	"moveline/services/persistence"
	"moveline/services/session"
	"moveline/utils"

	"go.uber.org/zap"
)

var errAlreadyFlushed = errors.New("session already flushed")

// finalStatuses are the call statuses that end a call.
var finalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

// IsFinalStatus reports whether a status callback ends the call.
func IsFinalStatus(status string) bool {
	return finalStatuses[strings.ToLower(status)]
}

// withContact fills a missing contact phone from caller id.
func withContact(s *models.Session) *models.Session {
	if s.Data.Phone != "" || s.CallerPhone == "" {
		return s
	}
	c := s.Clone()
	c.Data.Phone = persistence.PhoneKey(s.CallerPhone)
	return c
}

// claimFlush marks the session flushed. Only the caller that flips the flag
// gets claimed == true; everyone else sees the stored session unchanged.
func (m *Machine) claimFlush(ctx context.Context, id string, outcome models.Outcome) (*models.Session, bool, error) {
	now := m.now()
	s, err := m.Store.Update(ctx, id, func(s *models.Session) error {
		if s.Flushed {
			return errAlreadyFlushed
		}
		s.Flushed = true
		if s.Outcome == models.OutcomeNone {
			s.Outcome = outcome
		}
		if withContact(s).Data.HasMinimumContact() {
			s.RecordID = utils.NewRecordID(utils.LeadIDPrefix, now)
		}
		return nil
	})
	if errors.Is(err, errAlreadyFlushed) {
		s, err = m.Store.Get(ctx, id)
		return s, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// HandleStatus handles a status callback. Final statuses flush whatever the
// dialogue collected, write the call log, schedule a follow-up text when the
// caller left a name but no email, and drop the session. Failures are
// logged; the dialogue step is never advanced here.
func (m *Machine) HandleStatus(ctx context.Context, ev StatusEvent) {
	log := m.Logger.With(zap.String("sessionID", ev.CallSID), zap.String("status", ev.Status))
	if !IsFinalStatus(ev.Status) {
		log.Debug("ignoring non-final call status")
		return
	}

	s, claimed, err := m.claimFlush(ctx, ev.CallSID, models.OutcomeDisconnect)
	switch {
	case errors.Is(err, session.ErrNotFound):
		m.logCall(ctx, nil, ev)
		return
	case err != nil:
		log.Error("failed to claim session flush", zap.Error(err))
		return
	}
	if claimed {
		m.flushLead(ctx, s, "disconnect")
	}

	m.logCall(ctx, s, ev)
	m.scheduleFollowUp(ctx, s, ev)
	m.remove(ctx, s.ID)
	log.Info("call finished",
		zap.String("lastStep", string(s.Step)),
		zap.String("outcome", string(s.Outcome)),
		zap.String("recordID", s.RecordID))
}

// EvictIdle flushes and drops a session that stopped receiving events.
func (m *Machine) EvictIdle(ctx context.Context, id string) error {
	s, claimed, err := m.claimFlush(ctx, id, models.OutcomeIdle)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if claimed {
		m.flushLead(ctx, s, "idle")
	}
	m.remove(ctx, id)
	return nil
}

// flushLead persists a partial lead when the session has a name and a phone.
func (m *Machine) flushLead(ctx context.Context, s *models.Session, trigger string) {
	if s.RecordID == "" {
		utils.SessionsFlushed.WithLabelValues("skipped", trigger).Inc()
		m.Logger.Info("session ended without contact details, nothing to save",
			zap.String("sessionID", s.ID), zap.String("trigger", trigger))
		return
	}
	record := persistence.NewRecord(s.RecordID, models.StatusPartialLead, withContact(s), m.now())

	ctx, cancel := m.collab(ctx)
	defer cancel()
	if err := m.Recorder.AppendPartialLead(ctx, record); err != nil {
		m.collaboratorFailed("persistence", s.ID, err)
		m.Logger.Error("failed to save partial lead",
			zap.String("sessionID", s.ID),
			zap.String("recordID", record.ID),
			zap.String("name", record.Name),
			zap.String("phone", record.Phone),
			zap.Error(err))
		return
	}
	utils.SessionsFlushed.WithLabelValues("partial_lead", trigger).Inc()
	m.Logger.Info("partial lead saved", zap.String("sessionID", s.ID), zap.String("recordID", record.ID))
}

// flushBooking saves a confirmed booking and sends its notifications. Every
// step is attempted even when an earlier one failed.
func (m *Machine) flushBooking(ctx context.Context, s *models.Session) {
	s = withContact(s)
	now := m.now()
	record := persistence.NewRecord(s.RecordID, models.StatusBooking, s, now)
	company := m.settings.Company
	log := m.Logger.With(zap.String("sessionID", s.ID), zap.String("recordID", record.ID))

	record.ConfirmationSent = "No"
	if record.Phone != "" {
		smsCtx, cancel := m.collab(ctx)
		err := m.Notifier.SendSMS(smsCtx, record.Phone, notification.BookingConfirmationSMS(record, company))
		cancel()
		if err != nil {
			m.collaboratorFailed("notification", s.ID, err)
		} else {
			record.ConfirmationSent = "Yes"
		}
	}

	saveCtx, cancel := m.collab(ctx)
	err := m.Recorder.AppendBooking(saveCtx, record)
	cancel()
	if err != nil {
		m.collaboratorFailed("persistence", s.ID, err)
		log.Error("failed to save booking",
			zap.String("name", record.Name),
			zap.String("phone", record.Phone),
			zap.String("moveDate", record.MoveDate),
			zap.String("total", record.TotalEstimate),
			zap.Error(err))
	} else {
		utils.SessionsFlushed.WithLabelValues("booking", string(models.StepBookingConfirmed)).Inc()
		log.Info("booking saved")
	}

	emailCtx, cancel := m.collab(ctx)
	err = m.Notifier.SendBookingEmail(emailCtx, record)
	cancel()
	if err != nil {
		m.collaboratorFailed("notification", s.ID, err)
		log.Error("failed to send booking email", zap.Error(err))
	}

	custCtx, cancel := m.collab(ctx)
	err = m.Recorder.SaveCustomer(custCtx, models.Customer{
		ID:            utils.NewRecordID(utils.CustomerIDPrefix, now),
		Name:          record.Name,
		Phone:         record.Phone,
		Email:         record.Email,
		LastBookingID: record.ID,
		CreatedAt:     now,
	})
	cancel()
	if err != nil {
		m.collaboratorFailed("persistence", s.ID, err)
		log.Warn("failed to save customer", zap.Error(err))
	}

	taskCtx, cancel := m.collab(ctx)
	err = m.Scheduler.ScheduleReminder(taskCtx, models.ReminderPayload{
		BookingID: record.ID,
		Phone:     record.Phone,
		Name:      record.Name,
		MoveDate:  record.MoveDate,
		MoveTime:  record.MoveTime,
	})
	cancel()
	if err != nil {
		m.collaboratorFailed("tasks", s.ID, err)
		log.Warn("failed to schedule reminder", zap.Error(err))
	}
}

// logCall writes the call log row. s is nil when the session was already gone.
func (m *Machine) logCall(ctx context.Context, s *models.Session, ev StatusEvent) {
	now := m.now()
	entry := models.CallLog{
		ID:        utils.NewRecordID(utils.CallIDPrefix, now),
		CallSID:   ev.CallSID,
		Phone:     persistence.PhoneKey(ev.From),
		Direction: string(models.DirectionInbound),
		Status:    strings.ToLower(ev.Status),
		StartedAt: now,
		EndedAt:   now,
	}
	if s != nil {
		entry.Direction = string(s.Direction)
		entry.LastStep = string(s.Step)
		entry.Outcome = string(s.Outcome)
		entry.RecordID = s.RecordID
		entry.StartedAt = s.CreatedAt
		if s.CallerPhone != "" {
			entry.Phone = persistence.PhoneKey(s.CallerPhone)
		}
	}

	ctx, cancel := m.collab(ctx)
	defer cancel()
	if err := m.Recorder.LogCall(ctx, entry); err != nil {
		m.collaboratorFailed("persistence", ev.CallSID, err)
		m.Logger.Warn("failed to write call log", zap.String("sessionID", ev.CallSID), zap.Error(err))
	}
}

// scheduleFollowUp queues a text to a caller who completed the call with a
// name but without an email or a booking.
func (m *Machine) scheduleFollowUp(ctx context.Context, s *models.Session, ev StatusEvent) {
	if !strings.EqualFold(ev.Status, "completed") || s.Outcome == models.OutcomeBooked {
		return
	}
	c := withContact(s)
	if c.Data.Name == "" || c.Data.Email != "" || c.Data.Phone == "" {
		return
	}
	ctx, cancel := m.collab(ctx)
	defer cancel()
	err := m.Scheduler.ScheduleFollowUp(ctx, models.FollowUpPayload{
		CallSID: s.ID,
		Phone:   c.Data.Phone,
		Name:    c.Data.Name,
	})
	if err != nil {
		m.collaboratorFailed("tasks", s.ID, err)
		m.Logger.Warn("failed to schedule follow-up", zap.String("sessionID", s.ID), zap.Error(err))
	}
}
