package mpinauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/subtel/mpinauth/authapi"
)

// OTPEntry is the one-time-code entry state machine behind the OTP screen.
// It owns the per-field digit boxes, the focus cursor, and the resend
// cooldown. Create one via [Engine.StartOTP]; creation sends the first
// code.
type OTPEntry struct {
	engine  *Engine
	phone   string
	purpose FlowPurpose
	skipPin bool

	mu            sync.Mutex
	digits        []int // -1 marks an empty box
	focus         int
	resendReadyAt time.Time
	torndown      bool
}

// OTPSnapshot is a point-in-time view of the OTP screen state.
type OTPSnapshot struct {
	Filled          int
	Focus           int
	ResendRemaining time.Duration
}

// StartOTP begins OTP verification for the phone stashed by the preceding
// screen and sends the first code. The reset wizard reads the reset
// holder; the first-time wizard reads the verification holder.
//
// skipPinSetup is the navigation-level "this subscriber already has a PIN"
// hint; it is OR-ed with the server and local signals when verification
// succeeds.
func (e *Engine) StartOTP(ctx context.Context, purpose FlowPurpose, skipPinSetup bool) (*OTPEntry, error) {
	var phone string
	var ok bool
	if purpose == PurposeReset {
		phone, ok = e.creds.ResetPhone(ctx)
	} else {
		phone, ok = e.creds.TempPhone(ctx)
	}
	if !ok {
		return nil, ErrPhoneMissing
	}

	if err := e.api.SendOTP(ctx, phone); err != nil {
		e.emitAudit(ctx, "otp_send", false, phone, TargetNone, err, nil)
		if errors.Is(err, authapi.ErrTransport) {
			return nil, ErrNetworkUnavailable
		}
		return nil, err
	}

	digits := make([]int, e.config.OTP.Digits)
	for i := range digits {
		digits[i] = -1
	}

	o := &OTPEntry{
		engine:        e,
		phone:         phone,
		purpose:       purpose,
		skipPin:       skipPinSetup,
		digits:        digits,
		resendReadyAt: e.now().Add(e.config.OTP.ResendCooldown),
	}

	e.metricInc(MetricOTPSent)
	e.emitAudit(ctx, "otp_send", true, phone, TargetNone, nil, nil)
	return o, nil
}

// Phone returns the subscriber number under verification, for display.
func (o *OTPEntry) Phone() string {
	return o.phone
}

// SetDigit fills the box at index i and advances focus to the next box.
func (o *OTPEntry) SetDigit(i, digit int) error {
	if digit < 0 || digit > 9 {
		return ErrDigitOutOfRange
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torndown {
		return ErrFlowTornDown
	}
	if i < 0 || i >= len(o.digits) {
		return ErrDigitOutOfRange
	}

	o.digits[i] = digit
	if i < len(o.digits)-1 {
		o.focus = i + 1
	} else {
		o.focus = i
	}
	return nil
}

// Backspace clears backwards from box i. A filled box empties in place and
// keeps focus; an empty box moves focus to the previous box and empties
// that one, so held backspace walks the whole row clean.
func (o *OTPEntry) Backspace(i int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torndown || i < 0 || i >= len(o.digits) {
		return
	}

	if o.digits[i] >= 0 {
		o.digits[i] = -1
		o.focus = i
		return
	}
	if i > 0 {
		o.digits[i-1] = -1
		o.focus = i - 1
	}
}

// FocusIndex reports which box should hold the input cursor.
func (o *OTPEntry) FocusIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.focus
}

// ResendRemaining reports how long until resend unlocks. Zero means resend
// is available now.
func (o *OTPEntry) ResendRemaining() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resendRemainingLocked()
}

func (o *OTPEntry) resendRemainingLocked() time.Duration {
	remaining := o.resendReadyAt.Sub(o.engine.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanResend reports whether the resend cooldown has elapsed.
func (o *OTPEntry) CanResend() bool {
	return o.ResendRemaining() == 0
}

// Snapshot returns the current screen state for rendering.
func (o *OTPEntry) Snapshot() OTPSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	filled := 0
	for _, d := range o.digits {
		if d >= 0 {
			filled++
		}
	}
	return OTPSnapshot{
		Filled:          filled,
		Focus:           o.focus,
		ResendRemaining: o.resendRemainingLocked(),
	}
}

// Resend requests a fresh code. While the cooldown is running it fails
// with [ErrOTPResendCooldown] and sends nothing. On success every box is
// cleared, focus returns to the first box, and the cooldown restarts.
func (o *OTPEntry) Resend(ctx context.Context) error {
	o.mu.Lock()
	if o.torndown {
		o.mu.Unlock()
		return ErrFlowTornDown
	}
	if o.resendRemainingLocked() > 0 {
		o.mu.Unlock()
		return ErrOTPResendCooldown
	}
	o.mu.Unlock()

	e := o.engine
	if err := e.api.SendOTP(ctx, o.phone); err != nil {
		e.emitAudit(ctx, "otp_resend", false, o.phone, TargetNone, err, nil)
		if errors.Is(err, authapi.ErrTransport) {
			return ErrNetworkUnavailable
		}
		return err
	}

	o.mu.Lock()
	for i := range o.digits {
		o.digits[i] = -1
	}
	o.focus = 0
	o.resendReadyAt = e.now().Add(e.config.OTP.ResendCooldown)
	o.mu.Unlock()

	e.metricInc(MetricOTPResent)
	e.emitAudit(ctx, "otp_resend", true, o.phone, TargetNone, nil, nil)
	return nil
}

// RunResendTicker drives per-second cooldown callbacks until resend
// unlocks, the entry is torn down, or ctx is cancelled.
func (o *OTPEntry) RunResendTicker(ctx context.Context, fn func(time.Duration)) {
	ticker := o.engine.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			o.mu.Lock()
			dead := o.torndown
			remaining := o.resendRemainingLocked()
			o.mu.Unlock()
			if fn != nil {
				fn(remaining)
			}
			if dead || remaining == 0 {
				return
			}
		}
	}
}

// Verify submits the entered code. An incomplete entry is rejected locally
// with [ErrOTPIncomplete] and no network call.
//
// On success the first-time wizard routes by the OR of the three has-PIN
// signals: any of them set means the subscriber already holds an MPIN, so
// the phone persists as verified and the target is the login screen.
// Otherwise the transient holder survives for the setup screen to consume.
// The reset wizard always proceeds to PIN setup.
func (o *OTPEntry) Verify(ctx context.Context) (Target, error) {
	o.mu.Lock()
	if o.torndown {
		o.mu.Unlock()
		return TargetNone, ErrFlowTornDown
	}
	code := make([]byte, 0, len(o.digits))
	for _, d := range o.digits {
		if d < 0 {
			o.mu.Unlock()
			return TargetNone, ErrOTPIncomplete
		}
		code = append(code, byte('0'+d))
	}
	o.mu.Unlock()

	e := o.engine
	result, err := e.api.VerifyOTP(ctx, o.phone, string(code))
	if err != nil {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, "otp_verify", false, o.phone, TargetNone, err, nil)
		if errors.Is(err, authapi.ErrTransport) {
			return TargetNone, ErrNetworkUnavailable
		}
		o.mu.Lock()
		for i := range o.digits {
			o.digits[i] = -1
		}
		o.focus = 0
		o.mu.Unlock()
		return TargetNone, ErrOTPInvalid
	}

	e.metricInc(MetricOTPVerifySuccess)

	if o.purpose == PurposeReset {
		e.emitAudit(ctx, "otp_verify", true, o.phone, TargetSetupPIN, nil, nil)
		return TargetSetupPIN, nil
	}

	signals := PinSignals{
		Server:    result.HasPin,
		Local:     e.creds.PinConfigured(ctx, o.phone),
		ParamSkip: o.skipPin,
	}
	if HasPinAlready(signals) {
		if err := e.creds.CompleteVerification(ctx, o.phone); err != nil {
			return TargetNone, err
		}
		e.emitAudit(ctx, "otp_verify", true, o.phone, TargetLogin, nil, nil)
		return TargetLogin, nil
	}

	e.emitAudit(ctx, "otp_verify", true, o.phone, TargetSetupPIN, nil, nil)
	return TargetSetupPIN, nil
}

// Teardown marks the entry dead.
func (o *OTPEntry) Teardown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.torndown = true
}
