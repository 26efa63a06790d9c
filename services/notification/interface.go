package notification

import (
	"context"
	"fmt"

	"moveline/config"
	"moveline/models"
	"moveline/services/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// SESAPI is the slice of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSAPI is the slice of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NotificationService delivers booking emails to the manager and SMS to
// callers and the manager.
type NotificationService interface {
	SendBookingEmail(ctx context.Context, r models.Record) error
	SendSMS(ctx context.Context, to, body string) error
}

// Options configures DefaultNotificationService.
type Options struct {
	FromEmail    string
	ManagerEmail string
	SenderID     string
	EmailEnabled bool
	SMSEnabled   bool
	Company      Company
}

// DefaultNotificationService is the production implementation over SES and SNS.
type DefaultNotificationService struct {
	ses    SESAPI
	sns    SNSAPI
	opts   Options
	logger *zap.Logger
}

func NewDefaultNotificationService(sesClient SESAPI, snsClient SNSAPI, opts Options, logger *zap.Logger) (*DefaultNotificationService, error) {
	if sesClient == nil || snsClient == nil {
		return nil, fmt.Errorf("notification service initialization error: ses or sns client is nil")
	}
	return &DefaultNotificationService{ses: sesClient, sns: snsClient, opts: opts, logger: logger}, nil
}

// OptionsFromConfig maps configuration onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		FromEmail:    cfg.EmailFromAddr,
		ManagerEmail: cfg.ManagerEmail,
		SenderID:     cfg.SMSSenderID,
		EmailEnabled: cfg.EnableEmailNotifications,
		SMSEnabled:   cfg.EnableSMSNotifications,
		Company:      CompanyFromConfig(cfg),
	}
}

// NewFromConfig loads AWS credentials from the default chain for the configured region.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*DefaultNotificationService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("NewFromConfig: failed to load AWS config: %w", err)
	}
	return NewDefaultNotificationService(ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg), OptionsFromConfig(cfg), logger)
}

// Company returns the sender details used by the templates.
func (s *DefaultNotificationService) Company() Company {
	return s.opts.Company
}

// SendBookingEmail emails the manager a summary of a confirmed booking.
func (s *DefaultNotificationService) SendBookingEmail(ctx context.Context, r models.Record) error {
	if !s.opts.EmailEnabled || s.opts.ManagerEmail == "" || s.opts.FromEmail == "" {
		s.logger.Info("Booking email disabled, skipping", zap.String("bookingID", r.ID))
		return nil
	}

	subject, text, html, err := BookingEmail(r, s.opts.Company)
	if err != nil {
		return fmt.Errorf("SendBookingEmail: %w", err)
	}

	_, err = s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{s.opts.ManagerEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(text)},
				Html: &sestypes.Content{Data: aws.String(html)},
			},
		},
		Source: aws.String(s.opts.FromEmail),
	})
	if err != nil {
		return fmt.Errorf("SendBookingEmail: failed to send email for %s: %w", r.ID, err)
	}
	s.logger.Info("Booking email sent", zap.String("bookingID", r.ID))
	return nil
}

// SendSMS publishes a text message to an E.164 number.
func (s *DefaultNotificationService) SendSMS(ctx context.Context, to, body string) error {
	if !s.opts.SMSEnabled {
		s.logger.Info("SMS disabled, skipping", zap.String("to", to))
		return nil
	}
	phone := validation.ToE164(to)
	if phone == "" {
		return fmt.Errorf("SendSMS: no phone number")
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.opts.SenderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.opts.SenderID),
		}
	}

	if _, err := s.sns.Publish(ctx, input); err != nil {
		return fmt.Errorf("SendSMS: failed to publish to %s: %w", phone, err)
	}
	return nil
}
