package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrPaymentNotFound = errors.New("no refundable payment for order")
	ErrRefundRejected  = errors.New("payment gateway rejected refund")
)

type PaymentClient struct {
	baseURL    string
	teamSlug   string
	password   string
	httpClient *http.Client
}

type PaymentConfig struct {
	BaseURL  string
	TeamSlug string
	Password string
	Timeout  time.Duration
}

type PaymentCheckRequest struct {
	TeamSlug  string `json:"teamSlug"`
	Token     string `json:"token"`
	PaymentID string `json:"paymentId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
}

type PaymentCheckResponse struct {
	Success    bool             `json:"success"`
	Payments   []PaymentDetails `json:"payments"`
	TotalCount int              `json:"totalCount"`
	OrderID    string           `json:"orderId"`
}

type PaymentDetails struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type RefundRequest struct {
	TeamSlug  string `json:"teamSlug"`
	Token     string `json:"token"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
}

type RefundResponse struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message,omitempty"`
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PaymentClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		teamSlug: cfg.TeamSlug,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// MinorUnits converts an amount to cents for the gateway.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (pc *PaymentClient) generateToken(params map[string]string) string {
	params["TeamSlug"] = pc.teamSlug
	params["Password"] = pc.password

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(params[key])
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}

// CheckOrder lists the gateway payments recorded for an order id.
func (pc *PaymentClient) CheckOrder(ctx context.Context, orderID string) (*PaymentCheckResponse, error) {
	token := pc.generateToken(map[string]string{
		"OrderId": orderID,
	})

	var result PaymentCheckResponse
	err := pc.post(ctx, "/api/v1/PaymentCheck/check", PaymentCheckRequest{
		TeamSlug: pc.teamSlug,
		Token:    token,
		OrderID:  orderID,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}
	return &result, nil
}

// RefundOrder refunds the captured payment of an order. amount is in minor units.
func (pc *PaymentClient) RefundOrder(ctx context.Context, orderID string, amount int64, reason string) (*RefundResponse, error) {
	check, err := pc.CheckOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var paymentID string
	for _, p := range check.Payments {
		if strings.EqualFold(p.Status, "CONFIRMED") || strings.EqualFold(p.Status, "PAID") {
			paymentID = p.PaymentID
			break
		}
	}
	if paymentID == "" {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, orderID)
	}

	return pc.Refund(ctx, paymentID, amount, reason)
}

func (pc *PaymentClient) Refund(ctx context.Context, paymentID string, amount int64, reason string) (*RefundResponse, error) {
	token := pc.generateToken(map[string]string{
		"Amount":    strconv.FormatInt(amount, 10),
		"PaymentId": paymentID,
	})

	var result RefundResponse
	err := pc.post(ctx, "/api/v1/PaymentRefund/refund", RefundRequest{
		TeamSlug:  pc.teamSlug,
		Token:     token,
		PaymentID: paymentID,
		Amount:    amount,
		Reason:    reason,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrRefundRejected, result.Message)
	}
	return &result, nil
}

func (pc *PaymentClient) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
