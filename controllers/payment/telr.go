package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/config"
)

var ErrNotConfigured = errors.New("telr configuration missing")

// Client talks to the Telr hosted payment page API.
type Client struct {
	cfg  config.Telr
	http *http.Client
}

func NewClient(cfg config.Telr) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: 15 * time.Second}}
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Line1   string
	Line2   string
	City    string
	Country string
	Zip     string
}

type PaymentRequest struct {
	CartID      string
	Amount      string
	Description string
	Customer    Customer
}

type telrResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Message string `json:"message"`
		Note    string `json:"note"`
	} `json:"error,omitempty"`
}

func (c *Client) testMode() int {
	if c.cfg.Mode == "sandbox" || c.cfg.Mode == "dev" {
		return 1
	}
	return 0
}

// Create opens a hosted payment and returns the page URL and Telr's order reference.
func (c *Client) Create(ctx context.Context, req PaymentRequest) (string, string, error) {
	if c.cfg.StoreID == 0 || c.cfg.AuthKey == "" || c.cfg.APIURL == "" {
		return "", "", ErrNotConfigured
	}

	payload := map[string]any{
		"method":  "create",
		"store":   c.cfg.StoreID,
		"authkey": c.cfg.AuthKey,
		"order": map[string]any{
			"cartid":      req.CartID,
			"test":        c.testMode(),
			"amount":      req.Amount,
			"currency":    c.cfg.Currency,
			"description": req.Description,
		},
		"customer": map[string]any{
			"name":  req.Customer.Name,
			"email": req.Customer.Email,
			"phone": req.Customer.Phone,
			"address": map[string]string{
				"line1":    req.Customer.Line1,
				"line2":    req.Customer.Line2,
				"city":     req.Customer.City,
				"country":  req.Customer.Country,
				"postcode": req.Customer.Zip,
			},
		},
		"return": map[string]string{
			"authorised": c.cfg.SuccessURL,
			"declined":   c.cfg.FailureURL,
			"cancelled":  c.cfg.CancelURL,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to reach Telr: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("telr API error (%d): %s", resp.StatusCode, raw)
	}

	var tr telrResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", "", fmt.Errorf("failed to parse Telr response: %w", err)
	}
	if tr.Error != nil {
		return "", "", fmt.Errorf("telr error: %s %s", tr.Error.Message, tr.Error.Note)
	}
	if tr.Order.URL == "" {
		return "", "", errors.New("telr returned empty payment URL")
	}

	log.WithFields(log.Fields{"cart_id": req.CartID, "telr_ref": tr.Order.Ref, "test": c.testMode()}).Info("telr payment created")
	return tr.Order.URL, tr.Order.Ref, nil
}
