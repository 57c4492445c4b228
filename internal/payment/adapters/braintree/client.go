package braintree

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/fraudreview/internal/config"
	"github.com/smallbiznis/fraudreview/internal/payment/gateway"
	"go.uber.org/zap"
)

const (
	sandboxURL    = "https://api.sandbox.braintreegateway.com:443"
	productionURL = "https://api.braintreegateway.com:443"
	apiVersion    = "6"
)

type Config struct {
	Environment string
	MerchantID  string
	PublicKey   string
	PrivateKey  string
	// BaseURL overrides the environment default.
	BaseURL string
	Timeout time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Environment: cfg.Braintree.Environment,
		MerchantID:  cfg.Braintree.MerchantID,
		PublicKey:   cfg.Braintree.PublicKey,
		PrivateKey:  cfg.Braintree.PrivateKey,
		BaseURL:     cfg.Braintree.BaseURL,
		Timeout:     cfg.Braintree.Timeout,
	}
}

// Client talks to the Braintree XML gateway API.
type Client struct {
	baseURL    string
	merchantID string
	authHeader string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = sandboxURL
		if strings.EqualFold(cfg.Environment, "production") {
			base = productionURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	credentials := cfg.PublicKey + ":" + cfg.PrivateKey
	return &Client{
		baseURL:    base,
		merchantID: strings.TrimSpace(cfg.MerchantID),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("payment.braintree"),
	}
}

type transactionXML struct {
	XMLName             xml.Name `xml:"transaction"`
	ID                  string   `xml:"id"`
	Type                string   `xml:"type"`
	Status              string   `xml:"status"`
	Amount              string   `xml:"amount"`
	CurrencyISOCode     string   `xml:"currency-iso-code"`
	RefundedTransaction string   `xml:"refunded-transaction-id"`
	CreatedAt           string   `xml:"created-at"`
}

type apiErrorXML struct {
	XMLName xml.Name `xml:"api-error-response"`
	Message string   `xml:"message"`
}

type refundRequestXML struct {
	XMLName xml.Name `xml:"transaction"`
	Amount  string   `xml:"amount"`
}

// FindTransaction fetches a transaction by id. A 404 yields nil without error.
func (c *Client) FindTransaction(ctx context.Context, id string) (*gateway.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, gateway.ErrInvalidTransactionID
	}
	if c.merchantID == "" {
		return nil, gateway.ErrNotConfigured
	}

	status, body, err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decodeTransaction(body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, c.unexpected("find transaction", status, body)
	}
}

// Refund issues a partial or full refund of a settled transaction.
func (c *Client) Refund(ctx context.Context, id string, amount int64) (*gateway.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, gateway.ErrInvalidTransactionID
	}
	if amount <= 0 {
		return nil, gateway.ErrInvalidAmount
	}
	if c.merchantID == "" {
		return nil, gateway.ErrNotConfigured
	}

	payload, err := xml.Marshal(refundRequestXML{Amount: gateway.FormatAmount(amount)})
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, http.MethodPost, "/transactions/"+url.PathEscape(id)+"/refund", payload)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		txn, err := decodeTransaction(body)
		if err != nil {
			return nil, err
		}
		c.log.Info("refund issued",
			zap.String("transaction_id", id),
			zap.String("refund_id", txn.ID),
			zap.Int64("amount", amount),
		)
		return txn, nil
	case http.StatusUnprocessableEntity:
		var apiErr apiErrorXML
		if err := xml.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%w: %s", gateway.ErrRefundRejected, apiErr.Message)
		}
		return nil, gateway.ErrRefundRejected
	default:
		return nil, c.unexpected("refund", status, body)
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	endpoint := c.baseURL + "/merchants/" + url.PathEscape(c.merchantID) + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(append([]byte(xml.Header), payload...))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("X-ApiVersion", apiVersion)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("User-Agent", "fraudreview-braintree")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("braintree %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("braintree read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) unexpected(op string, status int, body []byte) error {
	c.log.Warn("unexpected braintree response",
		zap.String("operation", op),
		zap.Int("status", status),
		zap.Int("body_bytes", len(body)),
	)
	return fmt.Errorf("braintree %s: unexpected status %d", op, status)
}

func decodeTransaction(body []byte) (*gateway.Transaction, error) {
	var raw transactionXML
	if err := xml.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode braintree transaction: %w", err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("decode braintree transaction: missing id")
	}

	amount, err := gateway.ParseAmount(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("decode braintree transaction %s: %w", raw.ID, err)
	}

	txn := &gateway.Transaction{
		ID:                  strings.TrimSpace(raw.ID),
		Type:                strings.TrimSpace(raw.Type),
		Status:              gateway.ParseTransactionStatus(strings.TrimSpace(raw.Status)),
		Amount:              amount,
		Currency:            strings.ToUpper(strings.TrimSpace(raw.CurrencyISOCode)),
		RefundedTransaction: strings.TrimSpace(raw.RefundedTransaction),
	}
	if created := strings.TrimSpace(raw.CreatedAt); created != "" {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			txn.CreatedAt = ts.UTC()
		}
	}
	return txn, nil
}

var _ gateway.Client = (*Client)(nil)
