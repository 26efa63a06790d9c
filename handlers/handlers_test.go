package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"moveline/models"
	"moveline/services/conversation"
	"moveline/services/distance"
	"moveline/services/notification"
	"moveline/services/persistence"
	"moveline/services/pricing"
	"moveline/services/session"
	"moveline/services/telephony"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCompany = notification.Company{Name: "USF Moving Company", Phone: "(281) 743-4503"}

var testVoice = VoiceOptions{
	Voice:       "Polly.Joanna",
	Language:    "en-US",
	SpeechModel: "phone_call",
	ProcessURL:  "/voice/process",
}

type fakeDialogue struct {
	mu        sync.Mutex
	inbound   [][2]string
	outbound  []models.OutboundLead
	turns     []conversation.Event
	statuses  []conversation.StatusEvent
	directive models.Directive
}

func (f *fakeDialogue) StartInbound(_ context.Context, callSID, from string) models.Directive {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, [2]string{callSID, from})
	return f.directive
}

func (f *fakeDialogue) StartOutbound(_ context.Context, _ string, lead models.OutboundLead) models.Directive {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outbound = append(f.outbound, lead)
	return f.directive
}

func (f *fakeDialogue) HandleTurn(_ context.Context, ev conversation.Event) models.Directive {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, ev)
	return f.directive
}

func (f *fakeDialogue) HandleStatus(_ context.Context, ev conversation.StatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, ev)
}

type fakeUpdater struct {
	record *models.Record
	err    error
	calls  [][3]string
}

func (f *fakeUpdater) UpdateLatestBookingAddresses(_ context.Context, phone, pickup, dropoff string) (*models.Record, error) {
	f.calls = append(f.calls, [3]string{phone, pickup, dropoff})
	if f.err != nil {
		return nil, f.err
	}
	r := *f.record
	r.PickupAddress, r.DropoffAddress = pickup, dropoff
	return &r, nil
}

type fakeSender struct {
	to   []string
	body []string
	err  error
}

func (f *fakeSender) SendSMS(_ context.Context, to, body string) error {
	f.to = append(f.to, to)
	f.body = append(f.body, body)
	return f.err
}

type fakeCaller struct {
	leads []models.OutboundLead
	err   error
	today int
}

func (f *fakeCaller) PlaceLeadCall(_ context.Context, lead models.OutboundLead) (*models.OutboundCallResponse, error) {
	f.leads = append(f.leads, lead)
	if f.err != nil {
		return nil, f.err
	}
	return &models.OutboundCallResponse{CallSID: "CA0001", Status: "initiated"}, nil
}

func (f *fakeCaller) CallsToday(context.Context) (int, error) { return f.today, nil }

type fakeMaps struct {
	route distance.Route
	err   error
}

func (f *fakeMaps) Geocode(context.Context, string) (*models.Address, error) {
	return nil, errors.New("not used")
}

func (f *fakeMaps) Route(context.Context, string, string) (distance.Route, error) {
	return f.route, f.err
}

func newRouter(t *testing.T) *gin.Engine {
	r := gin.New()
	logger := zaptest.NewLogger(t)
	r.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRenderVoice(t *testing.T) {
	t.Run("gather", func(t *testing.T) {
		d := models.GatherDirective(models.GatherOptions{
			Mode:      models.InputSpeechDTMF,
			NumDigits: 1,
			Timeout:   5,
			Hints:     []string{"yes", "no"},
		}, "Is that correct?")
		doc, err := RenderVoice(d, testVoice)
		require.NoError(t, err)

		assert.Contains(t, doc, "<Gather")
		assert.Contains(t, doc, `input="speech dtmf"`)
		assert.Contains(t, doc, `numDigits="1"`)
		assert.Contains(t, doc, `timeout="5"`)
		assert.Contains(t, doc, `hints="yes,no"`)
		assert.Contains(t, doc, `action="/voice/process"`)
		assert.Contains(t, doc, `speechModel="phone_call"`)
		assert.Contains(t, doc, `voice="Polly.Joanna"`)
		assert.Contains(t, doc, "Is that correct?")
		assert.Contains(t, doc, "<Redirect")
		assert.Less(t, strings.Index(doc, "<Gather"), strings.Index(doc, "<Redirect"))
	})

	t.Run("transfer", func(t *testing.T) {
		doc, err := RenderVoice(models.TransferDirective("+18327999276", "Please hold."), testVoice)
		require.NoError(t, err)
		assert.Contains(t, doc, "Please hold.")
		assert.Contains(t, doc, "+18327999276</Dial>")
		assert.NotContains(t, doc, "<Gather")
	})

	t.Run("hangup", func(t *testing.T) {
		doc, err := RenderVoice(models.HangupDirective("Goodbye!"), testVoice)
		require.NoError(t, err)
		assert.Contains(t, doc, "Goodbye!")
		assert.Contains(t, doc, "<Hangup")
	})
}

func TestRenderMessage(t *testing.T) {
	doc, err := RenderMessage("See you Monday")
	require.NoError(t, err)
	assert.Contains(t, doc, "<Message>See you Monday</Message>")

	empty, err := RenderMessage("")
	require.NoError(t, err)
	assert.Contains(t, empty, "<Response")
	assert.NotContains(t, empty, "<Message")
}

func TestVoiceHandler(t *testing.T) {
	dialogue := &fakeDialogue{directive: models.HangupDirective("Thanks for calling.")}
	h := NewVoiceHandler(dialogue, testVoice, testCompany)
	r := newRouter(t)
	r.POST("/voice/inbound", h.InboundHandler)
	r.POST("/voice/process", h.ProcessHandler)
	r.POST("/voice/outbound", h.OutboundHandler)
	r.POST("/voice/status", h.StatusHandler)

	t.Run("inbound", func(t *testing.T) {
		w := postForm(r, "/voice/inbound", url.Values{"CallSid": {"CA100"}, "From": {"+17135550100"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
		assert.Contains(t, w.Body.String(), "Thanks for calling.")
		require.Len(t, dialogue.inbound, 1)
		assert.Equal(t, [2]string{"CA100", "+17135550100"}, dialogue.inbound[0])
	})

	t.Run("process prefers digits", func(t *testing.T) {
		dialogue.turns = nil
		postForm(r, "/voice/process", url.Values{"CallSid": {"CA100"}, "Digits": {"1"}, "SpeechResult": {"one"}})
		postForm(r, "/voice/process", url.Values{"CallSid": {"CA100"}, "SpeechResult": {" yes "}})
		postForm(r, "/voice/process", url.Values{"CallSid": {"CA100"}})

		require.Len(t, dialogue.turns, 3)
		assert.Equal(t, models.SourceDTMF, dialogue.turns[0].Input.Source)
		assert.Equal(t, "1", dialogue.turns[0].Input.Raw())
		assert.Equal(t, models.SourceSpeech, dialogue.turns[1].Input.Source)
		assert.Equal(t, "yes", dialogue.turns[1].Input.Text)
		assert.Equal(t, models.SourceNone, dialogue.turns[2].Input.Source)
		assert.True(t, dialogue.turns[2].Input.Empty())
		for _, ev := range dialogue.turns {
			assert.Equal(t, "CA100", ev.SessionID)
			assert.Equal(t, models.ChannelVoice, ev.Channel)
		}
	})

	t.Run("outbound carries the lead", func(t *testing.T) {
		w := postForm(r, "/voice/outbound?name=Jane+Doe&email=jane%40example.com",
			url.Values{"CallSid": {"CA200"}, "To": {"+17135550199"}, "AnsweredBy": {"human"}})
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, dialogue.outbound, 1)
		assert.Equal(t, models.OutboundLead{Phone: "+17135550199", Name: "Jane Doe", Email: "jane@example.com"}, dialogue.outbound[0])
	})

	t.Run("outbound voicemail", func(t *testing.T) {
		dialogue.outbound = nil
		w := postForm(r, "/voice/outbound", url.Values{"CallSid": {"CA201"}, "AnsweredBy": {"machine_end_beep"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, dialogue.outbound)
		assert.Contains(t, w.Body.String(), "(281) 743-4503")
		assert.Contains(t, w.Body.String(), "<Hangup")
	})

	t.Run("status", func(t *testing.T) {
		w := postForm(r, "/voice/status", url.Values{"CallSid": {"CA100"}, "CallStatus": {"completed"}, "From": {"+17135550100"}})
		assert.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, dialogue.statuses, 1)
		assert.Equal(t, conversation.StatusEvent{CallSID: "CA100", Status: "completed", From: "+17135550100"}, dialogue.statuses[0])
	})

	t.Run("missing CallSid gets a generated id", func(t *testing.T) {
		dialogue.inbound = nil
		postForm(r, "/voice/inbound", url.Values{"From": {"+17135550100"}})
		require.Len(t, dialogue.inbound, 1)
		assert.True(t, strings.HasPrefix(dialogue.inbound[0][0], "local-"))
	})
}

func TestParseAddressUpdate(t *testing.T) {
	pickup, dropoff, found := parseAddressUpdate("From: 123 Main St, Houston 77002\r\nTO: 9 Elm St, Austin 78701")
	assert.True(t, found)
	assert.Equal(t, "123 Main St, Houston 77002", pickup)
	assert.Equal(t, "9 Elm St, Austin 78701", dropoff)

	pickup, dropoff, found = parseAddressUpdate("from: 123 Main St")
	assert.True(t, found)
	assert.Equal(t, "123 Main St", pickup)
	assert.Empty(t, dropoff)

	_, _, found = parseAddressUpdate("I want to move today")
	assert.False(t, found)
}

func TestSMSHandler(t *testing.T) {
	const from = "+17135550100"
	booking := &models.Record{
		ID:            "BOOK-20261016-ABCD",
		Name:          "Jane Doe",
		Phone:         persistence.PhoneKey(from),
		MoveDate:      "2026-10-20",
		MoveTime:      "Morning",
		MoveType:      "Local Move",
		TotalEstimate: "520.00",
	}

	newSMS := func(t *testing.T, updater *fakeUpdater) (*gin.Engine, *fakeDialogue, *fakeSender) {
		dialogue := &fakeDialogue{directive: models.GatherDirective(models.GatherOptions{}, "What type of move?")}
		sender := &fakeSender{}
		h := NewSMSHandler(dialogue, updater, sender, testCompany, "+18327999276")
		r := newRouter(t)
		r.POST("/sms/incoming", h.IncomingHandler)
		return r, dialogue, sender
	}

	t.Run("address update", func(t *testing.T) {
		updater := &fakeUpdater{record: booking}
		r, dialogue, sender := newSMS(t, updater)

		w := postForm(r, "/sms/incoming", url.Values{"From": {from}, "Body": {"From: 123 Main St 77002\nTo: 9 Elm St 78701"}})
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, updater.calls, 1)
		assert.Equal(t, [3]string{from, "123 Main St 77002", "9 Elm St 78701"}, updater.calls[0])
		assert.Contains(t, w.Body.String(), "Booking Updated")
		assert.Contains(t, w.Body.String(), "9 Elm St 78701")
		require.Equal(t, []string{"+18327999276"}, sender.to)
		assert.Contains(t, sender.body[0], "Final Booking Info")
		assert.Contains(t, sender.body[0], "Jane Doe")
		assert.Empty(t, dialogue.turns)
	})

	t.Run("no booking for the sender", func(t *testing.T) {
		r, _, sender := newSMS(t, &fakeUpdater{err: fmt.Errorf("update: %w", persistence.ErrNotFound)})
		w := postForm(r, "/sms/incoming", url.Values{"From": {from}, "Body": {"From: 1 A St\nTo: 2 B St"}})
		assert.Contains(t, w.Body.String(), "find a booking for this number")
		assert.Empty(t, sender.to)
	})

	t.Run("half an update explains the format", func(t *testing.T) {
		updater := &fakeUpdater{record: booking}
		r, _, _ := newSMS(t, updater)
		w := postForm(r, "/sms/incoming", url.Values{"From": {from}, "Body": {"To: 2 B St"}})
		assert.Contains(t, w.Body.String(), "reply with your addresses")
		assert.Empty(t, updater.calls)
	})

	t.Run("anything else is a dialogue turn", func(t *testing.T) {
		r, dialogue, _ := newSMS(t, &fakeUpdater{record: booking})
		w := postForm(r, "/sms/incoming", url.Values{"From": {from}, "Body": {" I need a quote "}})
		assert.Contains(t, w.Body.String(), "<Message>What type of move?</Message>")
		require.Len(t, dialogue.turns, 1)
		ev := dialogue.turns[0]
		assert.Equal(t, SMSSessionID(from), ev.SessionID)
		assert.Equal(t, "sms:"+persistence.PhoneKey(from), ev.SessionID)
		assert.Equal(t, models.ChannelSMS, ev.Channel)
		assert.Equal(t, models.SourceSMS, ev.Input.Source)
		assert.Equal(t, "I need a quote", ev.Input.Text)
	})
}

func TestCreateLeadCallHandler(t *testing.T) {
	post := func(h *OutboundHandler, body string) *httptest.ResponseRecorder {
		r := newRouter(t)
		r.POST("/api/outbound/lead", h.CreateLeadCallHandler)
		req := httptest.NewRequest(http.MethodPost, "/api/outbound/lead", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	caller := &fakeCaller{}
	w := post(NewOutboundHandler(caller), `{"phone": "713-555-0199", "name": "Jane"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.OutboundCallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CA0001", resp.CallSID)
	assert.Equal(t, []models.OutboundLead{{Phone: "713-555-0199", Name: "Jane"}}, caller.leads)

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing phone", `{"name": "Jane"}`, nil, http.StatusBadRequest},
		{"invalid phone", `{"phone": "12"}`, fmt.Errorf("PlaceLeadCall: %w", telephony.ErrInvalidPhone), http.StatusBadRequest},
		{"daily cap", `{"phone": "7135550199"}`, fmt.Errorf("PlaceLeadCall: %w", telephony.ErrDailyCapReached), http.StatusTooManyRequests},
		{"disabled", `{"phone": "7135550199"}`, telephony.ErrOutboundDisabled, http.StatusServiceUnavailable},
		{"twilio down", `{"phone": "7135550199"}`, errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := post(NewOutboundHandler(&fakeCaller{err: tc.err}), tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestGetQuoteHandler(t *testing.T) {
	get := func(maps distance.Service, query string) *httptest.ResponseRecorder {
		h := NewQuoteHandler(maps, pricing.DefaultPolicy)
		r := newRouter(t)
		r.GET("/api/quote", h.GetQuoteHandler)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote?"+query, nil))
		return w
	}

	t.Run("explicit miles", func(t *testing.T) {
		w := get(&fakeMaps{err: errors.New("must not be called")}, "moveType=local&miles=35&pickupRooms=3&dropoffRooms=2&stairs=1")
		require.Equal(t, http.StatusOK, w.Code)

		var resp QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		want, err := pricing.DefaultPolicy.Estimate(pricing.Input{
			DistanceMiles: 35, PickupRooms: 3, DropoffRooms: 2, Stairs: 1, MoveType: models.MoveLocal,
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Estimate)
		assert.Equal(t, pricing.FormatMessage(want), resp.Message)
	})

	t.Run("measured route", func(t *testing.T) {
		maps := &fakeMaps{route: distance.Route{PickupToDropoffMiles: 12.5, TotalMiles: 40}}
		w := get(maps, "moveType=long+distance&pickup=77002&dropoff=78701&pickupRooms=2&dropoffRooms=2")
		require.Equal(t, http.StatusOK, w.Code)
		var resp QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, models.MoveLongDistance, resp.Estimate.MoveType)
		assert.Equal(t, 12.5, resp.Estimate.DistanceMiles)
	})

	t.Run("junk removal needs no route", func(t *testing.T) {
		w := get(&fakeMaps{err: errors.New("must not be called")}, "moveType=junk_removal&pickupRooms=1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("errors", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(&fakeMaps{}, "pickupRooms=2").Code)
		assert.Equal(t, http.StatusBadRequest, get(&fakeMaps{}, "moveType=piano").Code)
		assert.Equal(t, http.StatusBadRequest, get(&fakeMaps{}, "moveType=local&pickupRooms=11").Code)
		assert.Equal(t, http.StatusBadRequest, get(&fakeMaps{}, "moveType=local").Code)
		assert.Equal(t, http.StatusServiceUnavailable,
			get(&fakeMaps{err: distance.ErrMissingAPIKey}, "moveType=local&pickup=a&dropoff=b").Code)
		assert.Equal(t, http.StatusUnprocessableEntity,
			get(&fakeMaps{err: fmt.Errorf("Route: leg 2: %w", distance.ErrNoRoute)}, "moveType=local&pickup=a&dropoff=b").Code)
	})
}

func TestAdminHandler(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	t0 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	older := models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)
	older.Data.Name = "Jane Doe"
	newer := models.NewSession("sms:(713) 555-0100", models.ChannelSMS, models.DirectionInbound, t0.Add(time.Minute))
	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))

	h := NewAdminHandler(store, &fakeCaller{today: 7})
	r := newRouter(t)
	r.GET("/sessions", h.GetSessionsHandler)
	r.GET("/sessions/:id", h.GetSessionHandler)
	r.GET("/outbound/usage", h.GetOutboundUsageHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count    int              `json:"count"`
		Sessions []SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, newer.ID, list.Sessions[0].ID)
	assert.Equal(t, "Jane Doe", list.Sessions[1].Name)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/CA1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"CA1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outbound/usage", nil))
	assert.JSONEq(t, `{"callsToday": 7}`, w.Body.String())
}
