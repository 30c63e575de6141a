package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wglickman33/mykosherdelivery-sub001/config"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// IntentResult is what the processor reports for an intent. A processor may
// auto-settle a stored payment method, in which case CreateIntent already
// returns succeeded.
type IntentResult struct {
	IntentID     string
	ClientSecret string
	Status       models.IntentStatus
	FailureCode  string
	FailureMsg   string
}

// Gateway is the narrow contract with the external payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (IntentResult, error)
	RetrieveIntent(ctx context.Context, intentID string) (IntentResult, error)
}

// HTTPGateway talks to the processor's JSON API. Declines come back as
// DeclinedError, connectivity problems as TransientError; nothing rawer
// escapes this type.
type HTTPGateway struct {
	apiURL   string
	authKey  string
	testMode bool
	client   *http.Client
}

func NewHTTPGateway(cfg *config.Config) (*HTTPGateway, error) {
	if cfg.GatewayURL == "" || cfg.GatewayKey == "" {
		return nil, fmt.Errorf("payment gateway configuration missing")
	}
	return &HTTPGateway{
		apiURL:   cfg.GatewayURL,
		authKey:  cfg.GatewayKey,
		testMode: cfg.GatewayMode == "sandbox" || cfg.GatewayMode == "dev",
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type gatewayResponse struct {
	Intent struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Status       string `json:"status"`
	} `json:"intent"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"` // "card_error" for declines
	} `json:"error,omitempty"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (IntentResult, error) {
	payload := map[string]any{
		"method":   "intent.create",
		"authkey":  g.authKey,
		"test":     g.testMode,
		"amount":   amountMinor,
		"currency": currency,
		"metadata": metadata,
	}
	return g.post(ctx, payload)
}

func (g *HTTPGateway) RetrieveIntent(ctx context.Context, intentID string) (IntentResult, error) {
	payload := map[string]any{
		"method":  "intent.retrieve",
		"authkey": g.authKey,
		"intent":  intentID,
	}
	return g.post(ctx, payload)
}

func (g *HTTPGateway) post(ctx context.Context, payload map[string]any) (IntentResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return IntentResult{}, fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return IntentResult{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return IntentResult{}, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return IntentResult{}, &TransientError{Err: err}
	}
	if resp.StatusCode >= 500 {
		return IntentResult{}, &TransientError{Err: fmt.Errorf("gateway returned %d", resp.StatusCode)}
	}

	var gr gatewayResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return IntentResult{}, fmt.Errorf("parse gateway response: %w", err)
	}
	if gr.Error != nil {
		if gr.Error.Type == "card_error" {
			return IntentResult{}, &DeclinedError{Code: gr.Error.Code, Reason: gr.Error.Message}
		}
		return IntentResult{}, fmt.Errorf("gateway error %s: %s", gr.Error.Code, gr.Error.Message)
	}

	res := IntentResult{
		IntentID:     gr.Intent.ID,
		ClientSecret: gr.Intent.ClientSecret,
	}
	switch gr.Intent.Status {
	case "succeeded":
		res.Status = models.IntentStatusSucceeded
	case "failed":
		res.Status = models.IntentStatusFailed
	case "requires_confirmation", "":
		res.Status = models.IntentStatusRequiresConfirmation
	default:
		return IntentResult{}, fmt.Errorf("gateway reported unknown intent status %q", gr.Intent.Status)
	}
	return res, nil
}
