package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the Cloud API client.
type Options struct {
	BaseURL       string
	APIVersion    string
	AccessToken   string
	PhoneNumberID string
	Timeout       time.Duration
}

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a resty-backed client.
func NewClient(opts Options) *Client {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, opts.APIVersion)).
		SetAuthToken(opts.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{
		httpClient:    restyClient,
		phoneNumberID: opts.PhoneNumberID,
	}
}

// SendTextResponse mirrors the successful response from Meta.
type SendTextResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendText sends body to the WhatsApp number to.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendTextResponse, error) {
	if to == "" {
		return nil, errors.New("recipient must not be empty")
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": false,
		},
	}

	result := new(SendTextResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	return result, nil
}

// Notifier sends every message to one fixed recipient.
type Notifier struct {
	client    *Client
	recipient string
}

// NewNotifier binds client to recipient.
func NewNotifier(client *Client, recipient string) *Notifier {
	return &Notifier{client: client, recipient: recipient}
}

// Notify delivers message to the configured recipient.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	_, err := n.client.SendText(ctx, n.recipient, message)
	return err
}
