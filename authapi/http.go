package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	headerDeviceID  = "X-Device-ID"
	headerRequestID = "X-Request-ID"
)

// HTTPClient talks to the portal auth backend over HTTPS with a JSON
// envelope per endpoint. Every request carries a device identifier and a
// fresh request identifier for server-side correlation.
type HTTPClient struct {
	baseURL  string
	deviceID string
	http     *http.Client
}

// HTTPOption customizes an [HTTPClient].
type HTTPOption func(*HTTPClient)

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithDeviceID sets the device installation identifier sent on every
// request. When unset a random one is generated at construction.
func WithDeviceID(id string) HTTPOption {
	return func(c *HTTPClient) {
		c.deviceID = id
	}
}

// WithHTTPClient replaces the underlying [http.Client].
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient creates an [HTTPClient] for the given base URL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.deviceID == "" {
		c.deviceID = uuid.NewString()
	}
	return c
}

// envelope is the common response shape of the auth backend.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	HasPin  bool            `json:"hasPin"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, bearer string) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDeviceID, c.deviceID)
	req.Header.Set(headerRequestID, uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
			}
			return nil, &StatusError{Code: resp.StatusCode}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// requireSuccess maps a 2xx envelope whose status field does not report
// success to a denial. The backend sometimes signals failure inside a 200
// body. Login and Profile carry success in their payload instead and skip
// this check.
func requireSuccess(env *envelope) error {
	if env.Status != "success" {
		return &StatusError{Code: http.StatusOK, Message: env.Message}
	}
	return nil
}

// VerifyNumber describes the verifynumber operation and its observable behavior.
//
// VerifyNumber may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) VerifyNumber(ctx context.Context, mobileNumber string) error {
	env, err := c.post(ctx, "/auth/verify-number", map[string]string{
		"mobileNumber": mobileNumber,
	}, "")
	if err != nil {
		return err
	}
	return requireSuccess(env)
}

// SendOTP describes the sendotp operation and its observable behavior.
//
// SendOTP may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) SendOTP(ctx context.Context, mobileNumber string) error {
	env, err := c.post(ctx, "/auth/otp/send", map[string]string{
		"mobileNumber": mobileNumber,
	}, "")
	if err != nil {
		return err
	}
	return requireSuccess(env)
}

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) VerifyOTP(ctx context.Context, mobileNumber, otp string) (OTPResult, error) {
	env, err := c.post(ctx, "/auth/otp/verify", map[string]string{
		"mobileNumber": mobileNumber,
		"otp":          otp,
	}, "")
	if err != nil {
		return OTPResult{}, err
	}
	if err := requireSuccess(env); err != nil {
		return OTPResult{}, err
	}
	return OTPResult{HasPin: env.HasPin}, nil
}

// SetPIN describes the setpin operation and its observable behavior.
//
// SetPIN may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) SetPIN(ctx context.Context, mobileNumber, pin string) error {
	env, err := c.post(ctx, "/auth/pin/set", map[string]string{
		"mobileNumber": mobileNumber,
		"pin":          pin,
	}, "")
	if err != nil {
		return err
	}
	return requireSuccess(env)
}

// ResetPIN describes the resetpin operation and its observable behavior.
//
// ResetPIN may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) ResetPIN(ctx context.Context, mobileNumber, pin string) error {
	env, err := c.post(ctx, "/auth/pin/reset", map[string]string{
		"mobileNumber": mobileNumber,
		"pin":          pin,
	}, "")
	if err != nil {
		return err
	}
	return requireSuccess(env)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) Login(ctx context.Context, mobileNumber, pin string) (LoginResult, error) {
	env, err := c.post(ctx, "/auth/login", map[string]string{
		"mobileNumber": mobileNumber,
		"pin":          pin,
	}, "")
	if err != nil {
		return LoginResult{}, err
	}
	// A 2xx login body without a token is a rejection, whatever the
	// status field claims.
	if env.Token == "" {
		return LoginResult{}, &StatusError{Code: http.StatusOK, Message: env.Message}
	}
	return LoginResult{Token: env.Token, User: env.User}, nil
}

// Profile describes the profile operation and its observable behavior.
//
// Profile may return an error when input validation, dependency calls, or security checks fail.
func (c *HTTPClient) Profile(ctx context.Context, token string) (json.RawMessage, error) {
	env, err := c.post(ctx, "/auth/profile", map[string]string{}, token)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}
