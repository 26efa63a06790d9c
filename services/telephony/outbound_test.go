package telephony

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap/zaptest"

	"moveline/config"
	"moveline/models"
)

type fakeCalls struct {
	params []*twilioApi.CreateCallParams
	err    error
}

func (f *fakeCalls) CreateCall(p *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, p)
	sid := "CA0001"
	return &twilioApi.ApiV2010Call{Sid: &sid}, nil
}

func newTestDialer(t *testing.T, calls CallCreator, maxPerDay int) (*Dialer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		BaseURL:                "https://voice.example.com/",
		TwilioPhoneNumber:      "+12817434503",
		MaxOutboundCallsPerDay: maxPerDay,
		EnableOutboundCalls:    true,
	}
	d := NewDialer(calls, client, cfg, zaptest.NewLogger(t))
	d.loc = time.UTC
	d.now = func() time.Time { return time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC) }
	return d, mr
}

func TestPlaceLeadCall(t *testing.T) {
	calls := &fakeCalls{}
	d, mr := newTestDialer(t, calls, 5)

	resp, err := d.PlaceLeadCall(context.Background(), models.OutboundLead{Phone: "(281) 555-0100", Name: "'Jane Doe'", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "CA0001", resp.CallSID)
	assert.Equal(t, "initiated", resp.Status)

	require.Len(t, calls.params, 1)
	p := calls.params[0]
	assert.Equal(t, "+12815550100", *p.To)
	assert.Equal(t, "+12817434503", *p.From)
	assert.Equal(t, "https://voice.example.com/voice/status", *p.StatusCallback)

	answer, err := url.Parse(*p.Url)
	require.NoError(t, err)
	assert.Equal(t, "/voice/outbound", answer.Path)
	assert.Equal(t, "Jane Doe", answer.Query().Get("name"))
	assert.Equal(t, "jane@example.com", answer.Query().Get("email"))

	got, err := mr.Get("outbound:calls:2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestPlaceLeadCall_DailyCap(t *testing.T) {
	calls := &fakeCalls{}
	d, _ := newTestDialer(t, calls, 2)
	ctx := context.Background()
	lead := models.OutboundLead{Phone: "+12815550100"}

	_, err := d.PlaceLeadCall(ctx, lead)
	require.NoError(t, err)
	_, err = d.PlaceLeadCall(ctx, lead)
	require.NoError(t, err)

	_, err = d.PlaceLeadCall(ctx, lead)
	assert.ErrorIs(t, err, ErrDailyCapReached)
	assert.Len(t, calls.params, 2)

	n, err := d.CallsToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a rejected call does not consume quota")
}

func TestPlaceLeadCall_FailureReleasesSlot(t *testing.T) {
	d, _ := newTestDialer(t, &fakeCalls{err: errors.New("twilio 500")}, 2)
	ctx := context.Background()

	_, err := d.PlaceLeadCall(ctx, models.OutboundLead{Phone: "+12815550100"})
	assert.Error(t, err)

	n, err := d.CallsToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPlaceLeadCall_Rejects(t *testing.T) {
	d, _ := newTestDialer(t, &fakeCalls{}, 2)
	ctx := context.Background()

	_, err := d.PlaceLeadCall(ctx, models.OutboundLead{Phone: "12345"})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	d.enabled = false
	_, err = d.PlaceLeadCall(ctx, models.OutboundLead{Phone: "+12815550100"})
	assert.ErrorIs(t, err, ErrOutboundDisabled)
}
