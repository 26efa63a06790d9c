package models

import "time"

// Channel is the transport a session runs over.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelSMS   Channel = "sms"
)

// Direction records who placed the call.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeBooked      Outcome = "booked"
	OutcomeTransferred Outcome = "transferred"
	OutcomeEnded       Outcome = "ended"
	OutcomeDisconnect  Outcome = "disconnected"
	OutcomeIdle        Outcome = "idle_evicted"
)

// Session is the server-side state of one call or SMS thread.
type Session struct {
	ID             string        `json:"id"`
	Channel        Channel       `json:"channel"`
	Direction      Direction     `json:"direction"`
	CallerPhone    string        `json:"callerPhone,omitempty"`
	Step           Step          `json:"step"`
	Data           LeadData      `json:"data"`
	Retries        map[Field]int `json:"retries,omitempty"`
	Alternatives   []Slot        `json:"alternatives,omitempty"`
	Estimate       *Estimate     `json:"estimate,omitempty"`
	DigitBuffer    string        `json:"digitBuffer,omitempty"`
	Flushed        bool          `json:"flushed"`
	Outcome        Outcome       `json:"outcome,omitempty"`
	RecordID       string        `json:"recordId,omitempty"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastActivityAt time.Time     `json:"lastActivityAt"`
}

// NewSession returns a session at the greeting step.
func NewSession(id string, channel Channel, direction Direction, now time.Time) *Session {
	return &Session{
		ID:             id,
		Channel:        channel,
		Direction:      direction,
		Step:           StepGreeting,
		Retries:        map[Field]int{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Data = s.Data.clone()
	out.Retries = make(map[Field]int, len(s.Retries))
	for k, v := range s.Retries {
		out.Retries[k] = v
	}
	if s.Alternatives != nil {
		out.Alternatives = append([]Slot(nil), s.Alternatives...)
	}
	if s.Estimate != nil {
		e := *s.Estimate
		out.Estimate = &e
	}
	return &out
}

// RecordFailure bumps the consecutive-failure counter of f and returns it.
func (s *Session) RecordFailure(f Field) int {
	if s.Retries == nil {
		s.Retries = map[Field]int{}
	}
	s.Retries[f]++
	return s.Retries[f]
}

// ResetFailures clears the counter of f after a successful parse.
func (s *Session) ResetFailures(f Field) {
	delete(s.Retries, f)
}

// InvalidateEstimate drops a cached estimate after a pricing field changed.
func (s *Session) InvalidateEstimate() {
	s.Estimate = nil
}
