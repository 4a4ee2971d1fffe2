package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"fitmarket/internal/config"
	"fitmarket/internal/pkg/httpclient"
)

// Verifier is implemented by clients that can check a payment's state with
// the upstream provider.
type Verifier interface {
	Verify(ctx context.Context, invoiceID string) (*VerificationResult, error)
}

// Gateway talks to the payment provider's invoice API. The server key goes in
// the x-api-key header on every call.
type Gateway struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func NewGateway(cfg *config.PaymentConfig) *Gateway {
	return &Gateway{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client: httpclient.New().
			WithTimeout(cfg.Timeout).
			WithHeader("x-api-key", cfg.APIKey),
	}
}

type verifyResponse struct {
	Status        string                 `json:"status"`
	Amount        interface{}            `json:"amount"`
	Metadata      map[string]interface{} `json:"metadata"`
	RedirectURL   string                 `json:"redirect_url"`
	SessionID     string                 `json:"session_id"`
	TransactionID string                 `json:"transaction_id"`
	Message       string                 `json:"message"`
	Error         string                 `json:"error"`
}

// Verify checks one invoice with the provider. The reported status is passed
// through as-is; no local inference happens here.
func (g *Gateway) Verify(ctx context.Context, invoiceID string) (*VerificationResult, error) {
	if g.apiKey == "" {
		return nil, ErrConfiguration
	}

	body := map[string]string{"invoice_id": invoiceID}
	resp, err := g.client.Post(ctx, g.baseURL+"/invoice/verify", body)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}

	if !resp.IsSuccess() {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.Body),
		}
	}

	var parsed verifyResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "unparseable verify response",
		}
	}

	amount, err := parseAmount(parsed.Amount)
	if err != nil {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid amount in verify response: %v", parsed.Amount),
		}
	}

	txnID := parsed.SessionID
	if txnID == "" {
		txnID = parsed.TransactionID
	}
	if txnID == "" {
		txnID = invoiceID
	}

	return &VerificationResult{
		Status:        ParseStatus(parsed.Status),
		RawStatus:     parsed.Status,
		Amount:        amount,
		InvoiceID:     invoiceID,
		TransactionID: txnID,
		Metadata:      parsed.Metadata,
		RedirectURL:   parsed.RedirectURL,
	}, nil
}

// CreateInvoiceRequest describes a new payment to the provider. Metadata is
// echoed back verbatim on verification and carries the order payload.
type CreateInvoiceRequest struct {
	Amount      int64                  `json:"amount"`
	OrderID     string                 `json:"order_id"`
	Description string                 `json:"description"`
	CallbackURL string                 `json:"callback_url"`
	SuccessURL  string                 `json:"success_url"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// CreateInvoiceResult is the provider's reply to invoice creation.
type CreateInvoiceResult struct {
	InvoiceID  string `json:"invoice_id"`
	PaymentURL string `json:"payment_url"`
}

// CreateInvoice registers a payment with the provider and returns the hosted
// payment page URL.
func (g *Gateway) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResult, error) {
	if g.apiKey == "" {
		return nil, ErrConfiguration
	}

	resp, err := g.client.Post(ctx, g.baseURL+"/invoice", req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.Body),
		}
	}

	var result CreateInvoiceResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "unparseable create response"}
	}
	if result.InvoiceID == "" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "no invoice id returned"}
	}
	return &result, nil
}

// upstreamMessage digs the provider's error message out of an error body.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return ""
}

// parseAmount accepts the amount as either a JSON number or a numeric string,
// both of which the provider has been seen to send.
func parseAmount(v interface{}) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(math.Round(t)), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, err
		}
		return int64(math.Round(f)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return int64(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}
