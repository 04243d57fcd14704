package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.powerofaum.example.com"
	}
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// Session is a created checkout session
type Session struct {
	SessionID                 string `json:"sessionId"`
	URL                       string `json:"url"`
	ApplicationFeeAmountCents int64  `json:"applicationFeeAmountCents"`
}

func (c *Client) createSession(path, purchaserID string, amountCents int64, currency, vendorAccountID string) (*Session, error) {
	body := fmt.Sprintf(`{"purchaserId":%q,"amountCents":%d,"currency":%q,"vendorAccountId":%q}`,
		purchaserID, amountCents, currency, vendorAccountID)
	req, _ := http.NewRequest("POST", c.BaseURL+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create session: status %d", resp.StatusCode)
	}
	var out Session
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubscriptionSession(purchaserID string, amountCents int64, currency, vendorAccountID string) (*Session, error) {
	return c.createSession("/api/create-subscription-session", purchaserID, amountCents, currency, vendorAccountID)
}

func (c *Client) CreateAddonSession(purchaserID string, amountCents int64, currency, vendorAccountID string) (*Session, error) {
	return c.createSession("/api/create-addon-session", purchaserID, amountCents, currency, vendorAccountID)
}

func (c *Client) vendorStatus(path, vendorAccountID string) (map[string]interface{}, error) {
	u, _ := url.Parse(c.BaseURL + path)
	q := u.Query()
	q.Set("vendorAccountId", vendorAccountID)
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VendorSalesStatus(vendorAccountID string) (map[string]interface{}, error) {
	return c.vendorStatus("/api/vendor-sales-status", vendorAccountID)
}

func (c *Client) AddonPurchaseStatus(vendorAccountID string) (map[string]interface{}, error) {
	return c.vendorStatus("/api/addon-purchase-status", vendorAccountID)
}

func (c *Client) Health() (map[string]interface{}, error) {
	req, _ := http.NewRequest("GET", c.BaseURL+"/api/health", nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
