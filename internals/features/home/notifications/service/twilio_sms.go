package service

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"collegefee_backend/internals/configs"
)

// TwilioSender sends notification copies over Twilio Programmable SMS.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender returns nil when Twilio is not configured.
func NewTwilioSender(cfg configs.TwilioConfig) *TwilioSender {
	if !cfg.Enabled() {
		return nil
	}
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.From,
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}
