// File: services/telephony/outbound.go
package telephony

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"moveline/config"
	"moveline/models"
	"moveline/services/validation"
	"moveline/utils"

	"github.com/go-redis/redis/v8"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

var (
	ErrOutboundDisabled = errors.New("outbound calls are disabled")
	ErrDailyCapReached  = errors.New("daily outbound call limit reached")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// CallCreator is satisfied by the Twilio REST Api service.
type CallCreator interface {
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

// NewTwilioClient builds the REST client from account credentials.
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
}

// Dialer places outbound calls to web leads.
type Dialer struct {
	calls     CallCreator
	counter   *redis.Client
	from      string
	baseURL   string
	maxPerDay int
	record    bool
	enabled   bool
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewDialer(calls CallCreator, counter *redis.Client, cfg config.Config, logger *zap.Logger) *Dialer {
	return &Dialer{
		calls:     calls,
		counter:   counter,
		from:      cfg.TwilioPhoneNumber,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		maxPerDay: cfg.MaxOutboundCallsPerDay,
		record:    cfg.EnableCallRecording,
		enabled:   cfg.EnableOutboundCalls,
		loc:       time.Local,
		now:       time.Now,
		logger:    logger,
	}
}

func (d *Dialer) counterKey() string {
	return utils.OutboundCounterPrefix + d.now().In(d.loc).Format("2006-01-02")
}

// reserve takes one slot of today's quota. The counter expires after two
// days so stale keys clean themselves up.
func (d *Dialer) reserve(ctx context.Context) error {
	if d.maxPerDay <= 0 {
		return nil
	}
	key := d.counterKey()
	var incr *redis.IntCmd
	_, err := d.counter.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 48*time.Hour)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	if incr.Val() > int64(d.maxPerDay) {
		d.release(ctx, key)
		return ErrDailyCapReached
	}
	return nil
}

func (d *Dialer) release(ctx context.Context, key string) {
	if err := d.counter.Decr(ctx, key).Err(); err != nil {
		d.logger.Warn("Failed to release outbound call slot", zap.String("key", key), zap.Error(err))
	}
}

// CallsToday returns how many outbound calls were placed today.
func (d *Dialer) CallsToday(ctx context.Context) (int, error) {
	n, err := d.counter.Get(ctx, d.counterKey()).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// PlaceLeadCall dials a lead. Twilio fetches the answer script from
// /voice/outbound and reports the end of the call to /voice/status.
func (d *Dialer) PlaceLeadCall(ctx context.Context, lead models.OutboundLead) (*models.OutboundCallResponse, error) {
	if !d.enabled {
		return nil, ErrOutboundDisabled
	}
	to := validation.ToE164(lead.Phone)
	if len(to) < 11 {
		return nil, fmt.Errorf("PlaceLeadCall: %w: %q", ErrInvalidPhone, lead.Phone)
	}
	if err := d.reserve(ctx); err != nil {
		return nil, fmt.Errorf("PlaceLeadCall: %w", err)
	}

	answer := url.Values{}
	if name := validation.NormalizeString(lead.Name); name != "" {
		answer.Set("name", name)
	}
	if email := validation.NormalizeString(lead.Email); email != "" {
		answer.Set("email", email)
	}
	answerURL := d.baseURL + "/voice/outbound"
	if len(answer) > 0 {
		answerURL += "?" + answer.Encode()
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(d.from)
	params.SetUrl(answerURL)
	params.SetMethod("POST")
	params.SetStatusCallback(d.baseURL + "/voice/status")
	params.SetStatusCallbackMethod("POST")
	params.SetStatusCallbackEvent([]string{"completed"})
	params.SetRecord(d.record)
	params.SetMachineDetection("DetectMessageEnd")

	call, err := d.calls.CreateCall(params)
	if err != nil {
		d.release(ctx, d.counterKey())
		utils.CollaboratorErrors.WithLabelValues("twilio").Inc()
		return nil, fmt.Errorf("PlaceLeadCall: failed to create call to %s: %w", to, err)
	}

	resp := &models.OutboundCallResponse{Status: "initiated"}
	if call.Sid != nil {
		resp.CallSID = *call.Sid
	}
	d.logger.Info("Outbound call initiated", zap.String("to", to), zap.String("callSID", resp.CallSID))
	return resp, nil
}
