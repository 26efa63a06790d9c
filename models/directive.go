package models

import "strings"

// DirectiveKind is what the transport should do after speaking.
type DirectiveKind string

const (
	DirectiveGather   DirectiveKind = "gather"
	DirectiveHangup   DirectiveKind = "hangup"
	DirectiveTransfer DirectiveKind = "transfer"
)

// InputMode is the kind of caller input a gather accepts.
type InputMode string

const (
	InputSpeech     InputMode = "speech"
	InputDTMF       InputMode = "dtmf"
	InputSpeechDTMF InputMode = "speech dtmf"
)

// GatherOptions tunes how the transport collects the next input.
type GatherOptions struct {
	Mode      InputMode `json:"mode"`
	NumDigits int       `json:"numDigits,omitempty"`
	Timeout   int       `json:"timeout,omitempty"` // seconds
	Hints     []string  `json:"hints,omitempty"`
}

// Directive is the response instruction handed back to the transport layer.
type Directive struct {
	Kind   DirectiveKind  `json:"kind"`
	Say    []string       `json:"say,omitempty"`
	Gather *GatherOptions `json:"gather,omitempty"`
	Target string         `json:"target,omitempty"`
}

// Text joins the spoken segments with single spaces.
func (d Directive) Text() string {
	return strings.Join(d.Say, " ")
}

func GatherDirective(opts GatherOptions, say ...string) Directive {
	return Directive{Kind: DirectiveGather, Say: say, Gather: &opts}
}

func HangupDirective(say ...string) Directive {
	return Directive{Kind: DirectiveHangup, Say: say}
}

func TransferDirective(target string, say ...string) Directive {
	return Directive{Kind: DirectiveTransfer, Say: say, Target: target}
}

// InputSource says where the caller input came from.
type InputSource string

const (
	SourceSpeech InputSource = "speech"
	SourceDTMF   InputSource = "dtmf"
	SourceSMS    InputSource = "sms"
	SourceNone   InputSource = "none"
)

// Input is one caller utterance, keypress sequence or text message.
type Input struct {
	Text   string      `json:"text,omitempty"`
	Digits string      `json:"digits,omitempty"`
	Source InputSource `json:"source"`
}

// Raw prefers keypad digits over recognized speech.
func (in Input) Raw() string {
	if in.Digits != "" {
		return in.Digits
	}
	return in.Text
}

// Empty reports a silent turn.
func (in Input) Empty() bool {
	return in.Digits == "" && in.Text == ""
}
