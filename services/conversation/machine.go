// Package conversation drives the intake dialogue: one step handler per
// models.Step, per-field retry counters, and the flush of finished or
// abandoned sessions to persistence and notification.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"moveline/config"
	"moveline/models"
	"moveline/services/calendar"
	"moveline/services/distance"
	ai "moveline/services/intelligence"
	"moveline/services/notification"
	"moveline/services/persistence"
	"moveline/services/pricing"
	"moveline/services/session"
	"moveline/services/tasks"
	"moveline/utils"

	"go.uber.org/zap"
)

// maxCommitAttempts bounds how often a turn is re-run after losing a
// concurrent commit.
const maxCommitAttempts = 3

// Deps are the collaborators of the state machine. Classifier may be nil.
type Deps struct {
	Store      session.Store
	Recorder   persistence.Recorder
	Notifier   notification.NotificationService
	Scheduler  tasks.Scheduler
	Maps       distance.Service
	Calendar   *calendar.Calendar
	Classifier ai.Classifier
	Logger     *zap.Logger
}

// Settings are the policy knobs of the dialogue.
type Settings struct {
	MaxRetries          int
	CollaboratorTimeout time.Duration
	Company             notification.Company
	ManagerPhone        string
	LLMTransfer         bool
	Pricing             pricing.Policy
	Location            *time.Location
	SpeechHints         []string
}

// SettingsFromConfig maps the loaded configuration onto Settings.
func SettingsFromConfig(cfg config.Config) Settings {
	var hints []string
	for _, h := range strings.Split(cfg.SpeechHints, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	return Settings{
		MaxRetries:          cfg.MaxRetries,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		Company:             notification.CompanyFromConfig(cfg),
		ManagerPhone:        cfg.ManagerPhone,
		LLMTransfer:         cfg.IntentLLMTransfer,
		Pricing:             pricing.PolicyFromConfig(cfg),
		Location:            time.Local,
		SpeechHints:         hints,
	}
}

// Event is one inbound dialogue event from the transport.
type Event struct {
	SessionID string
	Channel   models.Channel
	From      string
	Input     models.Input
}

// StatusEvent is an out-of-band call status callback.
type StatusEvent struct {
	CallSID string
	Status  string
	From    string
	To      string
}

// Machine is the conversation state machine. It is safe for concurrent use;
// all per-session serialization happens in the session store.
type Machine struct {
	Deps
	settings Settings
	handlers map[models.Step]stepHandler
	now      func() time.Time
	effects  sync.WaitGroup
}

// New validates the settings and the dispatch table. Every non-terminal
// step must have a handler.
func New(deps Deps, settings Settings) (*Machine, error) {
	if deps.Store == nil || deps.Recorder == nil || deps.Notifier == nil || deps.Scheduler == nil || deps.Maps == nil || deps.Calendar == nil {
		return nil, errors.New("New: missing collaborator")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if settings.MaxRetries < 1 {
		settings.MaxRetries = 3
	}
	if settings.CollaboratorTimeout <= 0 {
		settings.CollaboratorTimeout = 5 * time.Second
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.Pricing == (pricing.Policy{}) {
		settings.Pricing = pricing.DefaultPolicy
	}

	handlers := dispatchTable()
	if err := checkDispatch(handlers); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	return &Machine{
		Deps:     deps,
		settings: settings,
		handlers: handlers,
		now:      time.Now,
	}, nil
}

func checkDispatch(handlers map[models.Step]stepHandler) error {
	for _, step := range models.AllSteps() {
		_, ok := handlers[step]
		switch {
		case step.Terminal() && ok:
			return fmt.Errorf("terminal step %s has a handler", step)
		case !step.Terminal() && !ok:
			return fmt.Errorf("step %s has no handler", step)
		}
	}
	return nil
}

// Wait blocks until every post-commit effect started so far has finished.
func (m *Machine) Wait() {
	m.effects.Wait()
}

// StartInbound opens the session of a new inbound call and returns the
// greeting. A returning caller is greeted by name.
func (m *Machine) StartInbound(ctx context.Context, callSID, from string) models.Directive {
	now := m.now()
	s := models.NewSession(callSID, models.ChannelVoice, models.DirectionInbound, now)
	s.CallerPhone = from

	if from != "" {
		lookupCtx, cancel := m.collab(ctx)
		customer, err := m.Recorder.FindCustomerByPhone(lookupCtx, from)
		cancel()
		switch {
		case err == nil:
			s.Data.Name = customer.Name
			s.Data.Email = customer.Email
			s.Data.ReturningCustomer = true
		case !errors.Is(err, persistence.ErrNotFound):
			m.collaboratorFailed("persistence", callSID, err)
		}
	}

	if err := m.create(ctx, s); err != nil {
		if errors.Is(err, session.ErrSessionExists) {
			// Twilio retried the webhook; repeat the current prompt.
			if existing, getErr := m.Store.Get(ctx, callSID); getErr == nil {
				return m.repeat(existing)
			}
		}
		m.Logger.Error("failed to create session", zap.String("sessionID", callSID), zap.Error(err))
		return m.apology()
	}
	m.Logger.Info("inbound call started",
		zap.String("sessionID", callSID),
		zap.Bool("returningCustomer", s.Data.ReturningCustomer))
	return m.gather(s.Step, m.greeting(s))
}

// StartOutbound opens the session of an answered outbound lead call.
func (m *Machine) StartOutbound(ctx context.Context, callSID string, lead models.OutboundLead) models.Directive {
	s := models.NewSession(callSID, models.ChannelVoice, models.DirectionOutbound, m.now())
	s.CallerPhone = lead.Phone
	s.Data.Phone = persistence.PhoneKey(lead.Phone)
	if email := strings.ToLower(normalize(lead.Email)); strings.Contains(email, "@") {
		s.Data.Email = email
	}

	intro := fmt.Sprintf("Hello, this is %s calling about your moving inquiry. If you'd like to talk to our manager, press zero at any time. I can provide you with an estimate today.", m.settings.Company.Name)
	s.Step = models.StepCollectName
	say := intro + " What is your full name?"
	if name := normalize(lead.Name); name != "" {
		s.Data.Name = name
		s.Step = models.StepConfirmName
		say = intro + " " + fmt.Sprintf("Am I speaking with %s?", name)
	}

	if err := m.create(ctx, s); err != nil && !errors.Is(err, session.ErrSessionExists) {
		m.Logger.Error("failed to create outbound session", zap.String("sessionID", callSID), zap.Error(err))
		return m.apology()
	}
	m.Logger.Info("outbound call answered", zap.String("sessionID", callSID))
	return m.gather(s.Step, say)
}

// HandleTurn runs one dialogue step. It always returns a directive; store
// and collaborator failures are logged, never surfaced.
func (m *Machine) HandleTurn(ctx context.Context, ev Event) models.Directive {
	for attempt := 1; ; attempt++ {
		snap, err := m.load(ctx, ev)
		if err != nil {
			m.Logger.Error("failed to load session", zap.String("sessionID", ev.SessionID), zap.Error(err))
			return m.apology()
		}
		if snap.Step.Terminal() || snap.Flushed {
			return m.closing(snap)
		}

		start := m.now()
		t := m.newTurn(ctx, snap, ev.Input)
		next, dir := m.dispatch(t)
		t.s.Step = next
		t.s.LastActivityAt = m.now()
		if next.Terminal() {
			m.finish(t)
		}

		committed, err := m.Store.Update(ctx, snap.ID, session.ExpectVersion(snap.Version, replaceWith(t.s)))
		switch {
		case errors.Is(err, session.ErrConflict) && attempt < maxCommitAttempts:
			m.Logger.Debug("turn lost a concurrent commit, retrying",
				zap.String("sessionID", snap.ID), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, session.ErrNotFound):
			// The call ended while this turn was running.
			return m.closing(snap)
		case err != nil:
			m.Logger.Error("failed to commit turn", zap.String("sessionID", snap.ID), zap.Error(err))
			return m.gather(snap.Step, "Sorry, could you say that again?")
		}

		utils.TurnsTotal.WithLabelValues(string(snap.Step), t.outcome).Inc()
		utils.TurnDuration.WithLabelValues(string(snap.Step)).Observe(m.now().Sub(start).Seconds())
		m.Logger.Info("turn committed",
			zap.String("sessionID", committed.ID),
			zap.String("from", string(snap.Step)),
			zap.String("to", string(committed.Step)),
			zap.String("outcome", t.outcome))

		m.runEffects(ctx, committed, t.effects)
		if committed.Step.Terminal() && committed.Channel == models.ChannelSMS {
			m.remove(ctx, committed.ID)
		}
		return dir
	}
}

// load returns the stored session, starting a new one when it is missing.
func (m *Machine) load(ctx context.Context, ev Event) (*models.Session, error) {
	s, err := m.Store.Get(ctx, ev.SessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	channel := ev.Channel
	if channel == "" {
		channel = models.ChannelVoice
	}
	fresh := models.NewSession(ev.SessionID, channel, models.DirectionInbound, m.now())
	fresh.CallerPhone = ev.From
	if err := m.create(ctx, fresh); err != nil && !errors.Is(err, session.ErrSessionExists) {
		return nil, err
	}
	m.Logger.Info("no session for event, started a new one",
		zap.String("sessionID", ev.SessionID), zap.String("channel", string(channel)))
	return m.Store.Get(ctx, ev.SessionID)
}

func (m *Machine) create(ctx context.Context, s *models.Session) error {
	if err := m.Store.Create(ctx, s); err != nil {
		return err
	}
	utils.ActiveSessions.Inc()
	return nil
}

func (m *Machine) remove(ctx context.Context, id string) {
	if err := m.Store.Remove(ctx, id); err != nil {
		m.Logger.Warn("failed to remove session", zap.String("sessionID", id), zap.Error(err))
		return
	}
	utils.ActiveSessions.Dec()
}

func replaceWith(work *models.Session) session.Mutator {
	return func(s *models.Session) error {
		*s = *work.Clone()
		return nil
	}
}

// dispatch applies the global transfer rule, then the step's handler.
func (m *Machine) dispatch(t *turn) (models.Step, models.Directive) {
	if t.wantsTransfer() {
		t.outcome = outcomeTransfer
		return t.transfer("")
	}
	return m.handlers[t.s.Step](t)
}

// collab returns a context bounded by the collaborator timeout.
func (m *Machine) collab(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.settings.CollaboratorTimeout)
}

func (m *Machine) collaboratorFailed(name, sessionID string, err error) {
	utils.CollaboratorErrors.WithLabelValues(name).Inc()
	m.Logger.Warn("collaborator call failed",
		zap.String("collaborator", name),
		zap.String("sessionID", sessionID),
		zap.Error(err))
}

// runEffects executes post-commit side effects in the background. They use
// a context detached from the request so a hung-up caller does not cancel
// the booking write.
func (m *Machine) runEffects(ctx context.Context, s *models.Session, effects []effect) {
	if len(effects) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	m.effects.Add(1)
	go func() {
		defer m.effects.Done()
		defer func() {
			if r := recover(); r != nil {
				m.Logger.Error("panic in session effect", zap.String("sessionID", s.ID), zap.Any("panic", r))
			}
		}()
		for _, e := range effects {
			e(detached, s)
		}
	}()
}
