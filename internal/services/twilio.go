package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
)

var twilioServiceInstance *TwilioService

// SetTwilioService sets the global Twilio service instance
func SetTwilioService(service *TwilioService) {
	twilioServiceInstance = service
}

// GetTwilioService returns the global Twilio service instance
func GetTwilioService() *TwilioService {
	return twilioServiceInstance
}

type TwilioService struct {
	client       *twilio.RestClient
	accountSID   string
	authToken    string
	whatsappFrom string
	sandboxCode  string
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg *config.Config) (*TwilioService, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioService{
		client:       client,
		accountSID:   cfg.TwilioAccountSID,
		authToken:    cfg.TwilioAuthToken,
		whatsappFrom: cfg.TwilioWhatsAppFrom,
		sandboxCode:  cfg.TwilioSandboxCode,
	}, nil
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio
func (t *TwilioService) SendWhatsAppMessage(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// SendWhatsAppTemplate sends a pre-approved WhatsApp template message,
// required for business-initiated messages outside the 24h session window
func (t *TwilioService) SendWhatsAppTemplate(to string, templateSID string, contentVariables map[string]string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetContentSid(templateSID)

	if len(contentVariables) > 0 {
		variablesJSON, err := json.Marshal(contentVariables)
		if err != nil {
			return fmt.Errorf("marshal content variables: %w", err)
		}
		params.SetContentVariables(string(variablesJSON))
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp template: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp template sent! SID: %s, Template: %s", *resp.Sid, templateSID)
	return nil
}

// SendWhatsApp is an alias for SendWhatsAppMessage
func (t *TwilioService) SendWhatsApp(to string, message string) error {
	return t.SendWhatsAppMessage(to, message)
}
