package mpinauth

import "encoding/json"

// Target defines a public type used by mpinauth APIs.
//
// Target instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Target uint8

const (
	// TargetNone is an exported constant or variable used by the authentication engine.
	TargetNone Target = iota
	// TargetPhoneVerify is an exported constant or variable used by the authentication engine.
	TargetPhoneVerify
	// TargetOTPVerify is an exported constant or variable used by the authentication engine.
	TargetOTPVerify
	// TargetSetupPIN is an exported constant or variable used by the authentication engine.
	TargetSetupPIN
	// TargetLogin is an exported constant or variable used by the authentication engine.
	TargetLogin
	// TargetHome is an exported constant or variable used by the authentication engine.
	TargetHome
)

// String describes the string operation and its observable behavior.
func (t Target) String() string {
	switch t {
	case TargetPhoneVerify:
		return "phone_verify"
	case TargetOTPVerify:
		return "otp_verify"
	case TargetSetupPIN:
		return "setup_pin"
	case TargetLogin:
		return "login"
	case TargetHome:
		return "home"
	default:
		return "none"
	}
}

// DecisionState is the explicit reentrancy state of the decision engine.
// Exactly one navigation is produced per Idle→Deciding→Navigated cycle;
// the caller returns the engine to Idle via [Engine.NavigationComplete].
type DecisionState uint8

const (
	// DecisionIdle is an exported constant or variable used by the authentication engine.
	DecisionIdle DecisionState = iota
	// DecisionDeciding is an exported constant or variable used by the authentication engine.
	DecisionDeciding
	// DecisionNavigated is an exported constant or variable used by the authentication engine.
	DecisionNavigated
)

// FlowPurpose distinguishes the first-time verification wizard from the
// forgot-MPIN reset wizard. Both share the phone → OTP → PIN shape.
type FlowPurpose uint8

const (
	// PurposeVerify is an exported constant or variable used by the authentication engine.
	PurposeVerify FlowPurpose = iota
	// PurposeReset is an exported constant or variable used by the authentication engine.
	PurposeReset
)

// UserProfile is the subscriber profile returned by the remote auth API on
// successful login and cached in the credential store for the home screen.
type UserProfile struct {
	SubscriberID string `json:"subscriber_id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	Plan         string `json:"plan"`
}

func decodeProfile(raw string) (UserProfile, error) {
	var profile UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return UserProfile{}, err
	}
	return profile, nil
}

// PinSignals carries the three independent "this phone already has a PIN"
// signals OR-ed by [HasPinAlready]: the server-reported flag from OTP
// verification, the locally cached per-phone flag, and an explicit skip
// flag passed through navigation.
type PinSignals struct {
	Server    bool
	Local     bool
	ParamSkip bool
}
