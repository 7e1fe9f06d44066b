package internaldefs

import (
	mpinauth "github.com/subtel/mpinauth"
)

// CounterDef defines a public type used by mpinauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   mpinauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by mpinauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   mpinauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: mpinauth.MetricDecisionPhoneVerify, Name: "mpinauth_decision_phone_verify_total", Help: "Launch decisions routed to phone verification."},
	{ID: mpinauth.MetricDecisionLogin, Name: "mpinauth_decision_login_total", Help: "Launch decisions routed to the login screen."},
	{ID: mpinauth.MetricDecisionHome, Name: "mpinauth_decision_home_total", Help: "Launch decisions routed to home."},
	{ID: mpinauth.MetricBiometricSuccess, Name: "mpinauth_biometric_success_total", Help: "Successful biometric challenges."},
	{ID: mpinauth.MetricBiometricFailure, Name: "mpinauth_biometric_failure_total", Help: "Failed biometric challenges."},
	{ID: mpinauth.MetricBiometricFallback, Name: "mpinauth_biometric_fallback_total", Help: "Biometric gates that fell back to MPIN login."},
	{ID: mpinauth.MetricLoginSuccess, Name: "mpinauth_login_success_total", Help: "Successful MPIN logins."},
	{ID: mpinauth.MetricLoginFailure, Name: "mpinauth_login_failure_total", Help: "Rejected MPIN login attempts."},
	{ID: mpinauth.MetricLockoutEntered, Name: "mpinauth_lockout_entered_total", Help: "Keypad lockouts entered after exhausted attempts."},
	{ID: mpinauth.MetricLockoutExpired, Name: "mpinauth_lockout_expired_total", Help: "Keypad lockouts that expired."},
	{ID: mpinauth.MetricPhoneVerifySuccess, Name: "mpinauth_phone_verify_success_total", Help: "Accepted subscriber number verifications."},
	{ID: mpinauth.MetricPhoneVerifyFailure, Name: "mpinauth_phone_verify_failure_total", Help: "Rejected subscriber number verifications."},
	{ID: mpinauth.MetricOTPSent, Name: "mpinauth_otp_sent_total", Help: "Initial OTP sends."},
	{ID: mpinauth.MetricOTPResent, Name: "mpinauth_otp_resent_total", Help: "OTP resends."},
	{ID: mpinauth.MetricOTPVerifySuccess, Name: "mpinauth_otp_verify_success_total", Help: "Successful OTP verifications."},
	{ID: mpinauth.MetricOTPVerifyFailure, Name: "mpinauth_otp_verify_failure_total", Help: "Failed OTP verifications."},
	{ID: mpinauth.MetricPinSetupSuccess, Name: "mpinauth_pin_setup_success_total", Help: "Successful MPIN setup or reset registrations."},
	{ID: mpinauth.MetricPinSetupFailure, Name: "mpinauth_pin_setup_failure_total", Help: "Failed MPIN setup or reset registrations."},
	{ID: mpinauth.MetricSessionTimeout, Name: "mpinauth_session_timeout_total", Help: "Sessions expired by the background timeout."},
	{ID: mpinauth.MetricLogout, Name: "mpinauth_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: mpinauth.MetricDecideLatency, Name: "mpinauth_decide_latency_seconds", Help: "Routing decision latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
