package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// Connection states reported by a transport session
const (
	ConnStateDisconnected = "DISCONNECTED"
	ConnStateConnecting   = "CONNECTING"
	ConnStateConnected    = "CONNECTED"
)

// TransportSession abstracts a channel provider session. The webhook handler
// consults it before accepting traffic and the readiness endpoint exposes its
// state to the platform.
type TransportSession interface {
	// Connect verifies provider credentials and marks the session ready
	Connect(ctx context.Context) error
	// IsAuthenticated reports whether the session can send messages
	IsAuthenticated() bool
	// LastError returns the most recent connection failure, if any
	LastError() string
	// RequestPairingCode returns the code a user sends to link their number
	RequestPairingCode(phone string) (string, error)
	// OnConnectionStateChange registers a callback fired on state transitions
	OnConnectionStateChange(fn func(state string))
}

const (
	connectAttempts = 3
	connectBackoff  = 5 * time.Second
)

// TwilioSession is the Twilio-backed transport session. Authentication is a
// credential probe against the account resource; the sandbox join code
// doubles as the pairing code.
type TwilioSession struct {
	accountSID  string
	authToken   string
	sandboxCode string
	httpClient  *http.Client

	mu        sync.RWMutex
	state     string
	lastError string
	listeners []func(state string)
}

func NewTwilioSession(accountSID, authToken, sandboxCode string) *TwilioSession {
	return &TwilioSession{
		accountSID:  accountSID,
		authToken:   authToken,
		sandboxCode: sandboxCode,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		state:       ConnStateDisconnected,
	}
}

// Connect probes the Twilio account resource with the configured credentials,
// retrying with a fixed backoff before giving up
func (s *TwilioSession) Connect(ctx context.Context) error {
	s.setState(ConnStateConnecting, "")

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err := s.probe(ctx); err != nil {
			lastErr = err
			log.Printf("⚠️ Twilio session probe failed (attempt %d/%d): %v", attempt, connectAttempts, err)
			select {
			case <-time.After(connectBackoff):
			case <-ctx.Done():
				s.setState(ConnStateDisconnected, ctx.Err().Error())
				return ctx.Err()
			}
			continue
		}
		s.setState(ConnStateConnected, "")
		log.Printf("✅ Twilio session authenticated: account=%s", s.accountSID)
		return nil
	}

	s.setState(ConnStateDisconnected, lastErr.Error())
	return fmt.Errorf("twilio session connect: %w", lastErr)
}

func (s *TwilioSession) probe(ctx context.Context) error {
	url := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s.json", s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("account probe returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *TwilioSession) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == ConnStateConnected
}

func (s *TwilioSession) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// RequestPairingCode returns the sandbox join code. Pairing happens on the
// user's side by sending this code to the sandbox number.
func (s *TwilioSession) RequestPairingCode(phone string) (string, error) {
	if s.sandboxCode == "" {
		return "", fmt.Errorf("no sandbox join code configured")
	}
	log.Printf("🔗 Pairing code requested: phone=%s", phone)
	return s.sandboxCode, nil
}

func (s *TwilioSession) OnConnectionStateChange(fn func(state string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *TwilioSession) setState(state, lastError string) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.lastError = lastError
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(state)
		}
	}
}
