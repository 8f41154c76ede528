package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"sunbird/internal/apperrors"
)

// PaymentClient talks to the marketplace card-payment processor. A charge is
// first authorized (held), then either captured or released. Void applies to
// uncaptured holds, Refund reverses a captured transfer; callers pick based on
// the booking's current payment status.
type PaymentClient struct {
	baseURL      string
	merchantSlug string
	password     string
	currency     string
	httpClient   *http.Client
}

type PaymentConfig struct {
	BaseURL      string
	MerchantSlug string
	Password     string
	Currency     string
	Timeout      time.Duration
}

type AuthorizeRequest struct {
	Amount         int64  // minor units
	OrderRef       string // booking reference, doubles as idempotency key
	OperatorID     int64
	OperatorAmount int64
	PlatformFee    int64
	CardToken      string
	Description    string
}

type authorizeWire struct {
	MerchantSlug   string `json:"merchantSlug"`
	Token          string `json:"token"`
	Amount         int64  `json:"amount"`
	OrderRef       string `json:"orderRef"`
	Currency       string `json:"currency"`
	OperatorID     int64  `json:"operatorId"`
	OperatorAmount int64  `json:"operatorAmount"`
	PlatformFee    int64  `json:"platformFee"`
	CardToken      string `json:"cardToken"`
	Description    string `json:"description,omitempty"`
}

type gatewayResponse struct {
	Success    bool   `json:"success"`
	PaymentRef string `json:"paymentRef"`
	OrderRef   string `json:"orderRef"`
	Status     string `json:"status"`
	ErrorCode  string `json:"errorCode"`
}

// AuthorizeResult is the processor-side hold the engine correlates back to
// the booking through OrderRef.
type AuthorizeResult struct {
	PaymentRef string
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}

	return &PaymentClient{
		baseURL:      cfg.BaseURL,
		merchantSlug: cfg.MerchantSlug,
		password:     cfg.Password,
		currency:     cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs the request: SHA-256 over the alphabetically sorted
// parameter values plus merchant credentials.
func (pc *PaymentClient) generateToken(params map[string]string) string {
	params["MerchantSlug"] = pc.merchantSlug
	params["Password"] = pc.password

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// Authorize places a hold for the full amount, tagged with the operator and
// the frozen settlement split. Declines come back as PaymentDeclinedError,
// transport problems as GatewayUnavailableError.
func (pc *PaymentClient) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	token := pc.generateToken(map[string]string{
		"Amount":   strconv.FormatInt(req.Amount, 10),
		"Currency": pc.currency,
		"OrderRef": req.OrderRef,
	})

	wire := authorizeWire{
		MerchantSlug:   pc.merchantSlug,
		Token:          token,
		Amount:         req.Amount,
		OrderRef:       req.OrderRef,
		Currency:       pc.currency,
		OperatorID:     req.OperatorID,
		OperatorAmount: req.OperatorAmount,
		PlatformFee:    req.PlatformFee,
		CardToken:      req.CardToken,
		Description:    req.Description,
	}

	resp, err := pc.post(ctx, "/api/v1/PaymentAuthorize/authorize", req.OrderRef, wire)
	if err != nil {
		return nil, &apperrors.GatewayUnavailableError{Op: "authorize", Err: err}
	}
	defer resp.Body.Close()

	var result gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &apperrors.GatewayUnavailableError{Op: "authorize", Err: fmt.Errorf("decode response: %w", err)}
	}

	if !result.Success {
		return nil, &apperrors.PaymentDeclinedError{Reason: mapDeclineCode(result.ErrorCode)}
	}

	return &AuthorizeResult{PaymentRef: result.PaymentRef}, nil
}

// Capture converts a hold into an actual transfer.
func (pc *PaymentClient) Capture(ctx context.Context, paymentRef string) error {
	return pc.terminalOp(ctx, "capture", "/api/v1/PaymentCapture/capture", paymentRef, "")
}

// Void cancels an uncaptured hold, releasing funds back to the payer.
func (pc *PaymentClient) Void(ctx context.Context, paymentRef string) error {
	return pc.terminalOp(ctx, "void", "/api/v1/PaymentVoid/void", paymentRef, "")
}

// Refund reverses a previously captured transfer.
func (pc *PaymentClient) Refund(ctx context.Context, paymentRef string) error {
	return pc.terminalOp(ctx, "refund", "/api/v1/PaymentRefund/refund", paymentRef, "")
}

func (pc *PaymentClient) terminalOp(ctx context.Context, op, path, paymentRef, reason string) error {
	token := pc.generateToken(map[string]string{
		"PaymentRef": paymentRef,
	})

	reqData := map[string]interface{}{
		"merchantSlug": pc.merchantSlug,
		"token":        token,
		"paymentRef":   paymentRef,
	}
	if reason != "" {
		reqData["reason"] = reason
	}

	resp, err := pc.post(ctx, path, paymentRef, reqData)
	if err != nil {
		return &apperrors.GatewayUnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result gatewayResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.ErrorCode != "" {
			return fmt.Errorf("payment %s failed: %s", op, result.ErrorCode)
		}
		return fmt.Errorf("payment %s failed: unexpected status code %d", op, resp.StatusCode)
	}

	return nil
}

func (pc *PaymentClient) post(ctx context.Context, path, idempotencyKey string, body interface{}) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	return pc.httpClient.Do(req)
}

// mapDeclineCode translates processor-specific error codes into the small
// engine taxonomy. Unknown codes stay opaque.
func mapDeclineCode(code string) string {
	switch code {
	case "card_declined", "do_not_honor", "generic_decline":
		return apperrors.DeclineGeneric
	case "expired_card":
		return apperrors.DeclineExpiredCard
	case "incorrect_cvc", "invalid_cvc":
		return apperrors.DeclineBadCVC
	case "insufficient_funds":
		return apperrors.DeclineInsufficientFunds
	default:
		return apperrors.DeclineUnknown
	}
}
