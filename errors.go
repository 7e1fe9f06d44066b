package mpinauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrDecisionInFlight is an exported constant or variable used by the authentication engine.
	ErrDecisionInFlight = errors.New("decision already in flight")
	// ErrPhoneInvalid is an exported constant or variable used by the authentication engine.
	ErrPhoneInvalid = errors.New("invalid mobile number")
	// ErrPhoneMissing is an exported constant or variable used by the authentication engine.
	ErrPhoneMissing = errors.New("no mobile number on record")
	// ErrOTPIncomplete is an exported constant or variable used by the authentication engine.
	ErrOTPIncomplete = errors.New("otp entry incomplete")
	// ErrOTPInvalid is an exported constant or variable used by the authentication engine.
	ErrOTPInvalid = errors.New("invalid otp code")
	// ErrOTPResendCooldown is an exported constant or variable used by the authentication engine.
	ErrOTPResendCooldown = errors.New("otp resend still cooling down")
	// ErrPINIncomplete is an exported constant or variable used by the authentication engine.
	ErrPINIncomplete = errors.New("pin entry incomplete")
	// ErrPINMismatch is an exported constant or variable used by the authentication engine.
	ErrPINMismatch = errors.New("pin confirmation does not match")
	// ErrPINRejected is an exported constant or variable used by the authentication engine.
	ErrPINRejected = errors.New("pin rejected by server")
	// ErrInvalidPIN is an exported constant or variable used by the authentication engine.
	ErrInvalidPIN = errors.New("invalid mpin")
	// ErrDigitOutOfRange is an exported constant or variable used by the authentication engine.
	ErrDigitOutOfRange = errors.New("digit must be 0-9")
	// ErrNetworkUnavailable is an exported constant or variable used by the authentication engine.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrBiometricUnavailable is an exported constant or variable used by the authentication engine.
	ErrBiometricUnavailable = errors.New("biometric unlock unavailable")
	// ErrBiometricDenied is an exported constant or variable used by the authentication engine.
	ErrBiometricDenied = errors.New("biometric challenge denied")
	// ErrVaultUnavailable is an exported constant or variable used by the authentication engine.
	ErrVaultUnavailable = errors.New("secure vault unavailable")
	// ErrFlowTornDown is an exported constant or variable used by the authentication engine.
	ErrFlowTornDown = errors.New("flow controller torn down")
)
