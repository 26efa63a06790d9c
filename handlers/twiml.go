package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"moveline/config"
	"moveline/models"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"
)

// fallbackVoiceXML is served when a directive cannot be rendered.
const fallbackVoiceXML = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>Sorry, we're having technical difficulties. Please call back later.</Say><Hangup/></Response>`

// VoiceOptions are the TwiML attributes shared by every voice response.
type VoiceOptions struct {
	Voice       string
	Language    string
	SpeechModel string
	// ProcessURL receives the caller input of every Gather.
	ProcessURL string
}

// VoiceOptionsFromConfig builds VoiceOptions from the loaded configuration.
func VoiceOptionsFromConfig(cfg config.Config) VoiceOptions {
	return VoiceOptions{
		Voice:       cfg.VoiceName,
		Language:    cfg.SpeechLanguage,
		SpeechModel: cfg.SpeechModel,
		ProcessURL:  "/voice/process",
	}
}

func (o VoiceOptions) say(text string) twiml.Element {
	return &twiml.VoiceSay{Message: text, Voice: o.Voice, Language: o.Language}
}

// RenderVoice turns a directive into a TwiML voice document. A Gather is
// followed by a Redirect back to the process URL so a silent caller still
// produces an (empty) turn.
func RenderVoice(d models.Directive, o VoiceOptions) (string, error) {
	var verbs []twiml.Element
	text := d.Text()

	switch d.Kind {
	case models.DirectiveGather:
		opts := models.GatherOptions{Mode: models.InputSpeechDTMF}
		if d.Gather != nil {
			opts = *d.Gather
		}
		gather := &twiml.VoiceGather{
			Input:         string(opts.Mode),
			Action:        o.ProcessURL,
			Method:        http.MethodPost,
			SpeechTimeout: "auto",
			Language:      o.Language,
			SpeechModel:   o.SpeechModel,
			Hints:         strings.Join(opts.Hints, ","),
		}
		if opts.Timeout > 0 {
			gather.Timeout = strconv.Itoa(opts.Timeout)
		}
		if opts.NumDigits > 0 {
			gather.NumDigits = strconv.Itoa(opts.NumDigits)
		}
		if text != "" {
			gather.InnerElements = []twiml.Element{o.say(text)}
		}
		verbs = append(verbs, gather, &twiml.VoiceRedirect{Url: o.ProcessURL, Method: http.MethodPost})
	case models.DirectiveTransfer:
		if text != "" {
			verbs = append(verbs, o.say(text))
		}
		verbs = append(verbs, &twiml.VoiceDial{Number: d.Target})
	default:
		if text != "" {
			verbs = append(verbs, o.say(text))
		}
		verbs = append(verbs, &twiml.VoiceHangup{})
	}
	return twiml.Voice(verbs)
}

// RenderMessage wraps an SMS reply in a TwiML messaging document. An empty
// body yields an empty response, which sends nothing.
func RenderMessage(body string) (string, error) {
	if body == "" {
		return twiml.Messages(nil)
	}
	return twiml.Messages([]twiml.Element{&twiml.MessagingMessage{Body: body}})
}

func writeTwiML(c *gin.Context, doc string) {
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

func respondVoice(c *gin.Context, d models.Directive, o VoiceOptions) {
	doc, err := RenderVoice(d, o)
	if err != nil {
		getLogger(c).Error("failed to render voice response", zap.Error(err))
		doc = fallbackVoiceXML
	}
	writeTwiML(c, doc)
}
