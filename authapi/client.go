// Package authapi is the client for the portal's remote authentication
// API: verify-number, send/verify OTP, set/reset PIN, and MPIN login.
// The core consumes these endpoints; it never serves them.
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates the API could not be reached or returned a
	// body that could not be decoded. Callers surface a generic message
	// and roll local state back; nothing is retried automatically.
	ErrTransport = errors.New("authapi: transport failure")
	// ErrDenied indicates the API answered and rejected the request.
	ErrDenied = errors.New("authapi: request denied")
)

// StatusError carries the HTTP status and server-supplied message of a
// rejected request. It unwraps to [ErrDenied].
type StatusError struct {
	Code    int
	Message string
}

// Error describes the error operation and its observable behavior.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authapi: denied (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("authapi: denied (%d)", e.Code)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *StatusError) Unwrap() error { return ErrDenied }

// ServerMessage extracts the server-supplied message from an error chain,
// or returns "" when there is none.
func ServerMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// OTPResult is the payload of a successful OTP verification.
type OTPResult struct {
	// HasPin is the server-reported "this subscriber already has a PIN"
	// flag, one of the three signals OR-ed by the routing trust policy.
	HasPin bool
}

// LoginResult is the payload of a successful MPIN login.
type LoginResult struct {
	Token string
	User  json.RawMessage
}

// Client is the remote auth API surface the engine depends on.
type Client interface {
	VerifyNumber(ctx context.Context, mobileNumber string) error
	SendOTP(ctx context.Context, mobileNumber string) error
	VerifyOTP(ctx context.Context, mobileNumber, otp string) (OTPResult, error)
	SetPIN(ctx context.Context, mobileNumber, pin string) error
	ResetPIN(ctx context.Context, mobileNumber, pin string) error
	Login(ctx context.Context, mobileNumber, pin string) (LoginResult, error)
	Profile(ctx context.Context, token string) (json.RawMessage, error)
}
