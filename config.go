package mpinauth

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by mpinauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Phone     PhoneConfig
	MPIN      MPINConfig
	OTP       OTPConfig
	Session   SessionConfig
	Biometric BiometricConfig
	API       APIConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
PHONE CONFIG
====================================
*/

// PhoneConfig defines a public type used by mpinauth APIs.
//
// PhoneConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PhoneConfig struct {
	Length       int
	MobilePrefix string // leading digit(s) a valid subscriber number must carry
}

/*
====================================
MPIN CONFIG
====================================
*/

// MPINConfig defines a public type used by mpinauth APIs.
//
// MPINConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MPINConfig struct {
	Digits          int
	MaxAttempts     int
	LockoutDuration time.Duration
	DefaultError    string // shown when the server supplies no message
}

// OTPConfig defines a public type used by mpinauth APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	Digits         int
	ResendCooldown time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by mpinauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// BackgroundTimeout is how long the app may stay backgrounded before
	// the session is expired on the next foreground transition. The
	// reference behavior is a deliberately short lock-on-backgrounding
	// policy, not an idle timeout.
	BackgroundTimeout time.Duration
}

// BiometricConfig defines a public type used by mpinauth APIs.
//
// BiometricConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BiometricConfig struct {
	Prompt string
}

// APIConfig defines a public type used by mpinauth APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuditConfig defines a public type used by mpinauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by mpinauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Phone: PhoneConfig{
			Length:       10,
			MobilePrefix: "9",
		},
		MPIN: MPINConfig{
			Digits:          6,
			MaxAttempts:     3,
			LockoutDuration: 30 * time.Second,
			DefaultError:    "Incorrect MPIN. Please try again.",
		},
		OTP: OTPConfig{
			Digits:         6,
			ResendCooldown: 30 * time.Second,
		},
		Session: SessionConfig{
			BackgroundTimeout: 60 * time.Second,
		},
		Biometric: BiometricConfig{
			Prompt: "Unlock your account",
		},
		API: APIConfig{
			Timeout: 15 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Phone
	if c.Phone.Length <= 0 {
		return errors.New("Phone Length must be > 0")
	}
	if c.Phone.MobilePrefix != "" {
		if len(c.Phone.MobilePrefix) >= c.Phone.Length {
			return errors.New("Phone MobilePrefix must be shorter than Phone Length")
		}
		if strings.Trim(c.Phone.MobilePrefix, "0123456789") != "" {
			return errors.New("Phone MobilePrefix must be numeric")
		}
	}

	// MPIN
	if c.MPIN.Digits < 4 || c.MPIN.Digits > 8 {
		return errors.New("MPIN Digits must be between 4 and 8")
	}
	if c.MPIN.MaxAttempts <= 0 {
		return errors.New("MPIN MaxAttempts must be > 0")
	}
	if c.MPIN.LockoutDuration <= 0 {
		return errors.New("MPIN LockoutDuration must be > 0")
	}

	// OTP
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 4 and 10")
	}
	if c.OTP.ResendCooldown <= 0 {
		return errors.New("OTP ResendCooldown must be > 0")
	}

	// Session
	if c.Session.BackgroundTimeout <= 0 {
		return errors.New("Session BackgroundTimeout must be > 0")
	}

	// API
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
