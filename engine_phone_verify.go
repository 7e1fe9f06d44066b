package mpinauth

import (
	"context"
	"errors"

	"github.com/subtel/mpinauth/authapi"
)

// VerifyPhone validates a subscriber number locally, confirms it with the
// auth API, and stashes it for the OTP screen. Validation failures never
// reach the network. On success the target is [TargetOTPVerify].
func (e *Engine) VerifyPhone(ctx context.Context, phone string, purpose FlowPurpose) (Target, error) {
	if !e.validPhone(phone) {
		e.metricInc(MetricPhoneVerifyFailure)
		return TargetNone, ErrPhoneInvalid
	}

	if err := e.api.VerifyNumber(ctx, phone); err != nil {
		e.metricInc(MetricPhoneVerifyFailure)
		e.emitAudit(ctx, "phone_verify", false, phone, TargetNone, err, nil)
		if errors.Is(err, authapi.ErrTransport) {
			return TargetNone, ErrNetworkUnavailable
		}
		return TargetNone, ErrPhoneInvalid
	}

	var err error
	if purpose == PurposeReset {
		err = e.creds.SetResetPhone(ctx, phone)
	} else {
		err = e.creds.SetTempPhone(ctx, phone)
	}
	if err != nil {
		return TargetNone, err
	}

	e.metricInc(MetricPhoneVerifySuccess)
	e.emitAudit(ctx, "phone_verify", true, phone, TargetOTPVerify, nil, nil)
	return TargetOTPVerify, nil
}

// StartPinReset begins the forgot-MPIN wizard for the given number. It is
// [Engine.VerifyPhone] with the reset purpose, offered separately because
// the login screen links to it directly.
func (e *Engine) StartPinReset(ctx context.Context, phone string) (Target, error) {
	return e.VerifyPhone(ctx, phone, PurposeReset)
}

// validPhone checks length, digits-only, and the carrier prefix.
func (e *Engine) validPhone(phone string) bool {
	if len(phone) != e.config.Phone.Length {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	prefix := e.config.Phone.MobilePrefix
	return prefix == "" || phone[:len(prefix)] == prefix
}
