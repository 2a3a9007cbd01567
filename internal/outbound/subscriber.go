package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"forge/internal/config"
	"forge/internal/store"
)

// Subscriber records waitlist signups and fans them out to the
// configured newsletter endpoints. Fan-out is fire-and-forget: every
// failure is logged and none is surfaced to the signup flow, so the
// user-facing response is always success.
type Subscriber struct {
	Store  store.RecordStore
	Logger *zap.Logger
	Config config.OutboundConfig

	client *retryablehttp.Client
}

func New(st store.RecordStore, logger *zap.Logger, cfg config.OutboundConfig) *Subscriber {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil
	return &Subscriber{
		Store:  st,
		Logger: logger,
		Config: cfg,
		client: client,
	}
}

// Subscribe stores the address in the waitlist collection and posts it
// to each configured integration. Only the store write can fail the
// call; integration errors are swallowed.
func (s *Subscriber) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	_, err := s.Store.Create(ctx, store.CollectionWaitlist, map[string]any{
		"email":    email,
		"source":   "website",
		"joinedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("waitlist store write failed", zap.Error(err))
		}
		return err
	}
	s.fanOut(ctx, email)
	return nil
}

func (s *Subscriber) fanOut(ctx context.Context, email string) {
	targets := map[string]string{
		"mailchimp":  s.Config.MailchimpURL,
		"convertkit": s.Config.ConvertKitURL,
		"sheets":     s.Config.SheetsURL,
	}
	for name, url := range targets {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if err := s.post(ctx, url, map[string]any{"email": email}); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("newsletter integration failed",
					zap.String("integration", name),
					zap.Error(err),
				)
			}
		}
	}
}

func (s *Subscriber) post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
