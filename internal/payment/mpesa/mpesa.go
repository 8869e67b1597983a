// Package mpesa is a Safaricom Daraja B2C client: OAuth token, payment
// request, transaction status query and the asynchronous callback payloads.
package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("mpesa config invalid")
	ErrAuthFailed       = errors.New("mpesa auth failed")
	ErrRequestFailed    = errors.New("mpesa request failed")
	ErrResponseInvalid  = errors.New("mpesa response invalid")
	ErrPhoneInvalid     = errors.New("mpesa phone invalid")
	ErrAmountInvalid    = errors.New("mpesa amount invalid")
	ErrCommandIDInvalid = errors.New("mpesa command id invalid")
	ErrQueryInvalid     = errors.New("mpesa status query invalid")
)

const (
	SandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	ProductionBaseURL = "https://api.safaricom.co.ke"

	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	paymentPath = "/mpesa/b2c/v1/paymentrequest"
	statusPath  = "/mpesa/transactionstatus/v1/query"

	ResultPath        = "/api/v1/mpesa/b2c/result"
	TimeoutPath       = "/api/v1/mpesa/b2c/timeout"
	StatusResultPath  = "/api/v1/mpesa/status/result"
	StatusTimeoutPath = "/api/v1/mpesa/status/timeout"

	MinAmount = 1
	MaxAmount = 70000

	defaultTimeout    = 30 * time.Second
	tokenExpirySkew   = 60 * time.Second
	remarksMaxLength  = 100
	occasionMaxLength = 100
	responseCodeOK    = "0"
	defaultCommandID  = "BusinessPayment"
	statusCommandID   = "TransactionStatusQuery"
	// shortcode identifier type for PartyA
	identifierShortCode = "4"
)

var validCommandIDs = map[string]struct{}{
	"BusinessPayment":  {},
	"SalaryPayment":    {},
	"PromotionPayment": {},
}

var kenyanMobilePattern = regexp.MustCompile(`^(?:\+254|254|0)?([71]\d{8})$`)

// Config Daraja credentials and callback wiring
type Config struct {
	BaseURL            string
	ConsumerKey        string
	ConsumerSecret     string
	InitiatorName      string
	SecurityCredential string
	ShortCode          string
	CommandID          string
	CallbackBaseURL    string
	Timeout            time.Duration
}

// ValidateConfig checks the fields every B2C call needs
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	required := map[string]string{
		"consumer_key":        cfg.ConsumerKey,
		"consumer_secret":     cfg.ConsumerSecret,
		"initiator_name":      cfg.InitiatorName,
		"security_credential": cfg.SecurityCredential,
		"short_code":          cfg.ShortCode,
		"callback_base_url":   cfg.CallbackBaseURL,
	}
	for _, name := range []string{"consumer_key", "consumer_secret", "initiator_name", "security_credential", "short_code", "callback_base_url"} {
		if strings.TrimSpace(required[name]) == "" {
			return fmt.Errorf("%w: %s is required", ErrConfigInvalid, name)
		}
	}
	if _, ok := validCommandIDs[cfg.CommandID]; !ok {
		return fmt.Errorf("%w: %s", ErrCommandIDInvalid, cfg.CommandID)
	}
	return nil
}

// BaseURLFor resolves the Daraja host for an environment name
func BaseURLFor(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = SandboxBaseURL
	}
	c.ConsumerKey = strings.TrimSpace(c.ConsumerKey)
	c.ConsumerSecret = strings.TrimSpace(c.ConsumerSecret)
	c.InitiatorName = strings.TrimSpace(c.InitiatorName)
	c.ShortCode = strings.TrimSpace(c.ShortCode)
	c.CommandID = strings.TrimSpace(c.CommandID)
	if c.CommandID == "" {
		c.CommandID = defaultCommandID
	}
	c.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(c.CallbackBaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// PaymentRequest one payout
type PaymentRequest struct {
	Phone        string
	Amount       int64
	RewardID     string
	CustomerName string
}

// StatusQuery identifies an earlier payout; at least one id is required
type StatusQuery struct {
	ReceiptNumber            string
	OriginatorConversationID string
	Reference                string
}

// PaymentResult gateway acknowledgement of a payout or status request
type PaymentResult struct {
	Success                  bool
	TransactionID            string // ConversationID
	OriginatorConversationID string
	Message                  string
	ErrorCode                string
}

type b2cResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
	ErrorCode                string `json:"errorCode"`
	ErrorMessage             string `json:"errorMessage"`
}

// Client B2C client, safe for concurrent use
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient validates cfg and builds a client
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient, now: time.Now}, nil
}

// FormatPhone normalises a Kenyan mobile number to 254XXXXXXXXX
func FormatPhone(phone string) (string, error) {
	cleaned := strings.Join(strings.Fields(phone), "")
	match := kenyanMobilePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", fmt.Errorf("%w: %s", ErrPhoneInvalid, phone)
	}
	return "254" + match[1], nil
}

// InitiatePayment sends a B2C payment request. A non-nil error means the
// request never got a gateway verdict; a verdict of rejection is returned as
// Success=false with the gateway code.
func (c *Client) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	phone, err := FormatPhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Amount < MinAmount || req.Amount > MaxAmount {
		return nil, fmt.Errorf("%w: %d not in %d..%d", ErrAmountInvalid, req.Amount, MinAmount, MaxAmount)
	}
	if strings.TrimSpace(req.RewardID) == "" {
		return nil, fmt.Errorf("%w: reward id is required", ErrRequestFailed)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = "customer"
	}
	body := map[string]interface{}{
		"InitiatorName":      c.cfg.InitiatorName,
		"SecurityCredential": c.cfg.SecurityCredential,
		"CommandID":          c.cfg.CommandID,
		"Amount":             req.Amount,
		"PartyA":             c.cfg.ShortCode,
		"PartyB":             phone,
		"Remarks":            truncate("Feedback reward for "+name, remarksMaxLength),
		"QueueTimeOutURL":    c.cfg.CallbackBaseURL + TimeoutPath,
		"ResultURL":          c.cfg.CallbackBaseURL + ResultPath,
		"Occasion":           truncate(req.RewardID, occasionMaxLength),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}

	return c.submit(ctx, paymentPath, token, payload)
}

// QueryStatus asks Daraja for the outcome of an earlier payout. The verdict
// arrives later on StatusResultPath; the returned ConversationID correlates it.
func (c *Client) QueryStatus(ctx context.Context, query StatusQuery) (*PaymentResult, error) {
	receipt := strings.TrimSpace(query.ReceiptNumber)
	originatorID := strings.TrimSpace(query.OriginatorConversationID)
	if receipt == "" && originatorID == "" {
		return nil, fmt.Errorf("%w: receipt or originator conversation id is required", ErrQueryInvalid)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"Initiator":              c.cfg.InitiatorName,
		"SecurityCredential":     c.cfg.SecurityCredential,
		"CommandID":              statusCommandID,
		"TransactionID":          receipt,
		"OriginalConversationID": originatorID,
		"PartyA":                 c.cfg.ShortCode,
		"IdentifierType":         identifierShortCode,
		"ResultURL":              c.cfg.CallbackBaseURL + StatusResultPath,
		"QueueTimeOutURL":        c.cfg.CallbackBaseURL + StatusTimeoutPath,
		"Remarks":                "Transaction status query",
		"Occasion":               truncate(strings.TrimSpace(query.Reference), occasionMaxLength),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}
	return c.submit(ctx, statusPath, token, payload)
}

// submit posts an asynchronous request and reads Daraja's synchronous acknowledgement
func (c *Client) submit(ctx context.Context, endpoint, token string, payload []byte) (*PaymentResult, error) {
	respBody, statusCode, err := c.doJSONRequest(ctx, http.MethodPost, endpoint, token, payload)
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusUnauthorized {
		c.resetToken()
	}
	var parsed b2cResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: status %d", ErrResponseInvalid, statusCode)
	}
	if statusCode < 200 || statusCode >= 300 {
		code := firstNonEmpty(parsed.ResponseCode, parsed.ErrorCode, strconv.Itoa(statusCode))
		return &PaymentResult{
			Success:   false,
			Message:   firstNonEmpty(parsed.ResponseDescription, parsed.ErrorMessage, fmt.Sprintf("http status %d", statusCode)),
			ErrorCode: code,
		}, nil
	}

	result := &PaymentResult{
		Success:                  parsed.ResponseCode == responseCodeOK,
		TransactionID:            parsed.ConversationID,
		OriginatorConversationID: parsed.OriginatorConversationID,
		Message:                  parsed.ResponseDescription,
	}
	if !result.Success {
		result.ErrorCode = parsed.ResponseCode
	}
	return result, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	ctx, cancel := withDefaultTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build token request failed", ErrAuthFailed)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request token failed", ErrAuthFailed)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response failed", ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrAuthFailed, resp.StatusCode)
	}

	var parsed struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode token response failed", ErrAuthFailed)
	}
	token := strings.TrimSpace(parsed.AccessToken)
	if token == "" {
		return "", fmt.Errorf("%w: access_token is empty", ErrAuthFailed)
	}
	expiresIn, _ := parsed.ExpiresIn.Int64()
	c.token = token
	c.tokenExpiry = c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpirySkew)
	return token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *Client) doJSONRequest(ctx context.Context, method, endpoint, token string, body []byte) ([]byte, int, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request failed: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
