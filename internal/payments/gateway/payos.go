package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
)

// Gateway creates hosted checkout links and verifies webhook signatures.
// Offline methods (cash, bank transfer) never touch it.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req *LinkRequest) (*LinkResponse, error)
	CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error
	VerifyWebhook(body []byte) (*WebhookData, error)
	// Payout sends money out to a bank account. The reference ties the
	// transfer back to the payment record that tracks it.
	Payout(ctx context.Context, reference string, amount int64, description string) error
}

type LinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	Signature   string `json:"signature"`
}

type LinkResponse struct {
	OrderCode   int64  `json:"orderCode"`
	CheckoutURL string `json:"checkoutUrl"`
	Status      string `json:"status"`
}

// WebhookData is the signed payload of a gateway callback.
type WebhookData struct {
	OrderCode      int64  `json:"orderCode"`
	Amount         int64  `json:"amount"`
	Code           string `json:"code"`
	Description    string `json:"desc"`
	CounterAccount string `json:"counterAccountNumber"`
	Reference      string `json:"reference"`
}

// Success reports whether the gateway settled the transaction.
func (d *WebhookData) Success() bool {
	return d.Code == "00"
}

type webhookEnvelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type payosGateway struct {
	cfg    *config.Config
	log    *logger.Logger
	client *http.Client
}

func NewPayOSGateway(cfg *config.Config) Gateway {
	return &payosGateway{
		cfg: cfg,
		log: cfg.Log,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *payosGateway) CreatePaymentLink(ctx context.Context, req *LinkRequest) (*LinkResponse, error) {
	req.ReturnURL = g.cfg.GatewayReturnURL
	req.CancelURL = g.cfg.GatewayCancelURL
	req.Signature = g.signLink(req)

	var out struct {
		Code string       `json:"code"`
		Desc string       `json:"desc"`
		Data LinkResponse `json:"data"`
	}
	if err := g.post(ctx, "/v2/payment-requests", req, &out); err != nil {
		return nil, err
	}
	if out.Code != "00" {
		return nil, apperrors.ExternalService(fmt.Sprintf("gateway rejected payment link: %s %s", out.Code, out.Desc), nil)
	}
	if out.Data.CheckoutURL == "" {
		return nil, apperrors.ExternalService("gateway returned an empty checkout URL", nil)
	}
	return &out.Data, nil
}

func (g *payosGateway) CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error {
	body := map[string]string{"cancellationReason": reason}
	var out struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	}
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	if err := g.post(ctx, path, body, &out); err != nil {
		return err
	}
	if out.Code != "00" {
		return apperrors.ExternalService(fmt.Sprintf("gateway refused cancellation: %s %s", out.Code, out.Desc), nil)
	}
	return nil
}

func (g *payosGateway) Payout(ctx context.Context, reference string, amount int64, description string) error {
	body := map[string]any{
		"referenceId": reference,
		"amount":      amount,
		"description": description,
	}
	var out struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	}
	if err := g.post(ctx, "/v2/payouts", body, &out); err != nil {
		return err
	}
	if out.Code != "00" {
		return apperrors.ExternalService(fmt.Sprintf("gateway refused payout: %s %s", out.Code, out.Desc), nil)
	}
	return nil
}

// VerifyWebhook authenticates the callback body against the checksum key and
// returns the signed data. The signature covers the data object's fields,
// sorted by key and joined as key=value pairs.
func (g *payosGateway) VerifyWebhook(body []byte) (*WebhookData, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperrors.InvalidInput("malformed webhook payload")
	}
	if env.Signature == "" || len(env.Data) == 0 {
		return nil, apperrors.InvalidInput("webhook payload missing data or signature")
	}

	var fields map[string]any
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		return nil, apperrors.InvalidInput("malformed webhook data object")
	}
	expected := g.sign(canonicalize(fields))
	if !hmac.Equal([]byte(expected), []byte(env.Signature)) {
		return nil, apperrors.InvalidInput("webhook signature mismatch")
	}

	var data WebhookData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, apperrors.InvalidInput("malformed webhook data object")
	}
	return &data, nil
}

func (g *payosGateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.GatewayBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", g.cfg.GatewayClientID)
	req.Header.Set("x-api-key", g.cfg.GatewayAPIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.ExternalService("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return apperrors.ExternalService(fmt.Sprintf("payment gateway returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ExternalService("failed to decode gateway response", err)
	}
	return nil
}

// signLink signs the five create-link fields in the gateway's fixed order.
func (g *payosGateway) signLink(req *LinkRequest) string {
	data := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)
	return g.sign(data)
}

func (g *payosGateway) sign(data string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.GatewayChecksumKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalize renders a JSON object as sorted key=value pairs joined by "&".
// Null values render as the empty string, numbers without an exponent.
func canonicalize(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+canonicalValue(fields[k]))
	}
	return strings.Join(parts, "&")
}

func canonicalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		encoded, _ := json.Marshal(val)
		return string(encoded)
	}
}
