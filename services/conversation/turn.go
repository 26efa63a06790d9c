package conversation

import (
	"context"
	"strings"
	"time"

	"moveline/models"
	ai "moveline/services/intelligence"
	"moveline/services/validation"
	"moveline/utils"

	"go.uber.org/zap"
)

// Turn outcomes, used as a metric label.
const (
	outcomeAdvanced = "advanced"
	outcomeProgress = "progress"
	outcomeRetry    = "retry"
	outcomeTransfer = "transfer"
	outcomeTerminal = "terminal"
)

// stepHandler parses the input expected at one step and returns the next
// step with the directive for it. Handlers only touch t.s, a private copy.
type stepHandler func(t *turn) (models.Step, models.Directive)

// effect runs after a successful commit against the committed session.
type effect func(ctx context.Context, s *models.Session)

type turn struct {
	m       *Machine
	ctx     context.Context
	s       *models.Session
	in      models.Input
	text    string
	now     time.Time
	outcome string
	effects []effect
}

func (m *Machine) newTurn(ctx context.Context, snap *models.Session, in models.Input) *turn {
	return &turn{
		m:       m,
		ctx:     ctx,
		s:       snap.Clone(),
		in:      in,
		text:    normalize(in.Raw()),
		now:     m.now().In(m.settings.Location),
		outcome: outcomeAdvanced,
	}
}

func normalize(s string) string {
	return validation.NormalizeString(s)
}

// field is the retry counter charged for failures at the current step.
func (t *turn) field() models.Field {
	return stepFields[t.s.Step]
}

// ask resets the current field's counter and moves to next, prefixing its
// question with lead.
func (t *turn) ask(next models.Step, lead string) (models.Step, models.Directive) {
	t.s.ResetFailures(t.field())
	return next, t.m.gather(next, join(lead, t.m.question(t.s, next)))
}

// stay keeps the step without charging a failure, for partial input such as
// the first digits of a phone number.
func (t *turn) stay(say string) (models.Step, models.Directive) {
	t.outcome = outcomeProgress
	return t.s.Step, t.m.gather(t.s.Step, say)
}

// fail charges a failure to the current field and reprompts. Reaching the
// retry limit hands the caller to the manager.
func (t *turn) fail(reprompt string) (models.Step, models.Directive) {
	return t.failTo(t.s.Step, t.field(), reprompt)
}

func (t *turn) failTo(step models.Step, f models.Field, reprompt string) (models.Step, models.Directive) {
	n := t.s.RecordFailure(f)
	if n >= t.m.settings.MaxRetries {
		t.m.Logger.Info("retry limit reached, transferring",
			zap.String("sessionID", t.s.ID),
			zap.String("field", string(f)),
			zap.Int("failures", n))
		t.outcome = outcomeTransfer
		return t.transfer("I'm having trouble understanding.")
	}
	t.outcome = outcomeRetry
	if reprompt == "" {
		reprompt = "I didn't catch that. " + t.m.question(t.s, step)
	}
	return step, t.m.gather(step, reprompt)
}

func (t *turn) transfer(lead string) (models.Step, models.Directive) {
	if t.outcome == outcomeAdvanced {
		t.outcome = outcomeTransfer
	}
	return models.StepTransferredToManager, t.m.terminalDirective(t.s, models.StepTransferredToManager, lead)
}

// end closes the dialogue at a terminal step.
func (t *turn) end(step models.Step, lead string) (models.Step, models.Directive) {
	t.outcome = outcomeTerminal
	t.s.ResetFailures(t.field())
	return step, t.m.terminalDirective(t.s, step, lead)
}

// wantsTransfer is the global rule: keypad zero, a spoken transfer request,
// or, when enabled, the classifier reading the utterance as one.
func (t *turn) wantsTransfer() bool {
	if strings.TrimSpace(t.in.Digits) == "0" {
		return true
	}
	if t.in.Text == "" {
		return false
	}
	if validation.IsTransferRequest(t.in.Text) {
		return true
	}
	if !t.m.settings.LLMTransfer {
		return false
	}
	return t.classify(t.in.Text, transferCategories) == "transfer"
}

var (
	transferCategories = []string{"transfer", "continue"}
	yesNoCategories    = []string{"affirmative", "negative"}
	moveTypeCategories = []string{"local", "long distance", "junk removal", "in-home service"}
)

// classify asks the classifier, treating a missing classifier and backend
// errors as unrecognized. The answer is normalized before use.
func (t *turn) classify(text string, categories []string) string {
	if t.m.Classifier == nil || text == "" {
		return ai.Unrecognized
	}
	ctx, cancel := t.m.collab(t.ctx)
	defer cancel()
	out, err := t.m.Classifier.Classify(ctx, text, categories)
	if err != nil {
		t.m.collaboratorFailed("classifier", t.s.ID, err)
		return ai.Unrecognized
	}
	return ai.Normalize(out, categories)
}

// answer reads a yes/no reply, falling back to the classifier for phrasing
// the keyword rules do not know.
func (t *turn) answer() validation.Answer {
	if a := validation.ParseYesNo(t.text); a != validation.AnswerUnknown {
		return a
	}
	switch t.classify(t.in.Text, yesNoCategories) {
	case "affirmative":
		return validation.AnswerYes
	case "negative":
		return validation.AnswerNo
	}
	return validation.AnswerUnknown
}

func (t *turn) addEffect(e effect) {
	t.effects = append(t.effects, e)
}

// finish marks a session that just reached a terminal step and queues its
// flush. A session already flushed by a status callback or eviction is not
// flushed twice.
func (m *Machine) finish(t *turn) {
	s := t.s
	if s.Outcome == models.OutcomeNone {
		s.Outcome = outcomeFor(s.Step)
	}
	if s.Flushed {
		return
	}
	s.Flushed = true
	switch s.Step {
	case models.StepBookingConfirmed:
		s.RecordID = utils.NewRecordID(utils.BookingIDPrefix, t.now)
		t.addEffect(func(ctx context.Context, s *models.Session) { m.flushBooking(ctx, s) })
	default:
		if withContact(s).Data.HasMinimumContact() {
			s.RecordID = utils.NewRecordID(utils.LeadIDPrefix, t.now)
		}
		trigger := string(s.Step)
		t.addEffect(func(ctx context.Context, s *models.Session) { m.flushLead(ctx, s, trigger) })
	}
}

func outcomeFor(step models.Step) models.Outcome {
	switch step {
	case models.StepBookingConfirmed:
		return models.OutcomeBooked
	case models.StepTransferredToManager:
		return models.OutcomeTransferred
	}
	return models.OutcomeEnded
}

// join concatenates non-empty sentences with single spaces.
func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
