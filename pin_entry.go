package mpinauth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/subtel/mpinauth/authapi"
)

// EntryState defines a public type used by mpinauth APIs.
//
// EntryState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EntryState uint8

const (
	// EntryIdle is an exported constant or variable used by the authentication engine.
	EntryIdle EntryState = iota
	// EntryEntering is an exported constant or variable used by the authentication engine.
	EntryEntering
	// EntrySubmitting is an exported constant or variable used by the authentication engine.
	EntrySubmitting
	// EntrySuccess is an exported constant or variable used by the authentication engine.
	EntrySuccess
	// EntryLocked is an exported constant or variable used by the authentication engine.
	EntryLocked
)

// PinEntryHooks are optional UI callbacks fired synchronously from keypad
// operations. Nil functions are skipped.
type PinEntryHooks struct {
	// Haptic fires on every accepted key press, backspace included.
	Haptic func()
	// Shake fires when a submitted MPIN is rejected by the server.
	Shake func()
}

// PinEntrySnapshot is a point-in-time view of the keypad state for
// rendering.
type PinEntrySnapshot struct {
	State         EntryState
	Digits        int
	Attempts      int
	LockRemaining time.Duration
	Message       string
}

// PinEntry is the MPIN keypad state machine behind the login screen. One
// instance per screen visit; create it via [Engine.NewPinEntry] and tear
// it down when the screen goes away.
//
// All methods are safe for concurrent use, though the intended caller is a
// single UI loop.
type PinEntry struct {
	engine *Engine
	hooks  PinEntryHooks
	phone  string

	mu          sync.Mutex
	state       EntryState
	digits      []int
	attempts    int
	lockedUntil time.Time
	message     string
	torndown    bool
}

// NewPinEntry creates the keypad state machine for the login screen. The
// subscriber number is resolved once, preferring the transient holder a
// prior decision or verification stashed, falling back to the verified
// phone. Without either the login screen has nobody to log in.
func (e *Engine) NewPinEntry(ctx context.Context, hooks PinEntryHooks) (*PinEntry, error) {
	phone, ok := e.creds.TempPhone(ctx)
	if !ok {
		phone, ok = e.creds.Phone(ctx)
	}
	if !ok {
		return nil, ErrPhoneMissing
	}

	return &PinEntry{
		engine: e,
		hooks:  hooks,
		phone:  phone,
		state:  EntryIdle,
	}, nil
}

// Phone returns the subscriber number this keypad logs in, for display.
func (p *PinEntry) Phone() string {
	return p.phone
}

// refreshLockLocked lazily expires a finished lockout. Callers hold p.mu.
func (p *PinEntry) refreshLockLocked() {
	if p.state != EntryLocked {
		return
	}
	if p.engine.now().Before(p.lockedUntil) {
		return
	}
	p.state = EntryIdle
	p.digits = p.digits[:0]
	p.attempts = 0
	p.message = ""
	p.engine.metricInc(MetricLockoutExpired)
}

// Press accepts one keypad digit. Presses are ignored while locked or
// while a submission is in flight. When the press completes the MPIN the
// entry submits automatically and the result of that submission is
// returned; otherwise the target is [TargetNone].
func (p *PinEntry) Press(ctx context.Context, digit int) (Target, error) {
	if digit < 0 || digit > 9 {
		return TargetNone, ErrDigitOutOfRange
	}

	p.mu.Lock()
	if p.torndown {
		p.mu.Unlock()
		return TargetNone, ErrFlowTornDown
	}
	p.refreshLockLocked()
	if p.state == EntryLocked || p.state == EntrySubmitting || p.state == EntrySuccess {
		p.mu.Unlock()
		return TargetNone, nil
	}
	if len(p.digits) >= p.engine.config.MPIN.Digits {
		p.mu.Unlock()
		return TargetNone, nil
	}

	p.digits = append(p.digits, digit)
	p.state = EntryEntering
	p.message = ""
	full := len(p.digits) == p.engine.config.MPIN.Digits
	haptic := p.hooks.Haptic
	p.mu.Unlock()

	if haptic != nil {
		haptic()
	}
	if !full {
		return TargetNone, nil
	}
	return p.submit(ctx)
}

// Backspace removes the last entered digit. A no-op while locked, while
// submitting, or when the entry is empty.
func (p *PinEntry) Backspace() {
	p.mu.Lock()
	if p.torndown {
		p.mu.Unlock()
		return
	}
	p.refreshLockLocked()
	if p.state == EntryLocked || p.state == EntrySubmitting {
		p.mu.Unlock()
		return
	}
	if len(p.digits) == 0 {
		p.mu.Unlock()
		return
	}
	p.digits = p.digits[:len(p.digits)-1]
	if len(p.digits) == 0 {
		p.state = EntryIdle
	}
	haptic := p.hooks.Haptic
	p.mu.Unlock()

	if haptic != nil {
		haptic()
	}
}

// Snapshot returns the current keypad state for rendering. LockRemaining
// is zero unless the state is [EntryLocked].
func (p *PinEntry) Snapshot() PinEntrySnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshLockLocked()

	snap := PinEntrySnapshot{
		State:    p.state,
		Digits:   len(p.digits),
		Attempts: p.attempts,
		Message:  p.message,
	}
	if p.state == EntryLocked {
		snap.LockRemaining = p.lockedUntil.Sub(p.engine.now())
	}
	return snap
}

// submit sends the completed MPIN to the auth API.
func (p *PinEntry) submit(ctx context.Context) (Target, error) {
	p.mu.Lock()
	if p.state != EntryEntering || len(p.digits) != p.engine.config.MPIN.Digits {
		p.mu.Unlock()
		return TargetNone, ErrPINIncomplete
	}
	p.state = EntrySubmitting
	pin := digitsToString(p.digits)
	p.mu.Unlock()

	e := p.engine

	// The record can change underneath an open login screen, for example
	// when a background timeout expired the session. Re-check before the
	// network call.
	if _, ok := e.creds.Phone(ctx); !ok {
		if _, ok := e.creds.TempPhone(ctx); !ok {
			p.fail(EntryIdle, 0, "")
			e.emitAudit(ctx, "login", false, p.phone, TargetPhoneVerify, ErrPhoneMissing, nil)
			return TargetPhoneVerify, ErrPhoneMissing
		}
	}

	result, err := e.api.Login(ctx, p.phone, pin)
	if err != nil {
		if errors.Is(err, authapi.ErrTransport) {
			// Not the user's fault. Clear the entry without charging an
			// attempt; previously charged attempts stay.
			p.fail(EntryIdle, -1, "")
			e.emitAudit(ctx, "login", false, p.phone, TargetNone, err, nil)
			return TargetNone, ErrNetworkUnavailable
		}
		return p.rejected(ctx, err)
	}
	// A success response without a token never authenticates anyone.
	if result.Token == "" {
		return p.rejected(ctx, ErrInvalidPIN)
	}

	profileJSON := ""
	if len(result.User) > 0 {
		profileJSON = string(result.User)
	}
	if err := e.creds.SaveLogin(ctx, p.phone, result.Token, profileJSON); err != nil {
		p.fail(EntryIdle, -1, "")
		e.emitAudit(ctx, "login", false, p.phone, TargetNone, err, nil)
		return TargetNone, err
	}

	// Refresh the sealed MPIN for biometric unlock while we hold the
	// plaintext. Best effort.
	if e.vault != nil && e.creds.BiometricEnabled(ctx) {
		if sealed, err := e.vault.Seal(pin); err == nil {
			if err := e.creds.SetSavedMPIN(ctx, p.phone, sealed); err != nil {
				logf("save sealed mpin: %v", err)
			}
		} else {
			logf("seal mpin: %v", err)
		}
	}

	p.mu.Lock()
	p.state = EntrySuccess
	p.digits = p.digits[:0]
	p.attempts = 0
	p.message = ""
	p.mu.Unlock()

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, "login", true, p.phone, TargetHome, nil, nil)
	return TargetHome, nil
}

// rejected handles a denied login attempt: the entry clears, the attempt
// counter charges, and the third strike starts the lockout countdown.
func (p *PinEntry) rejected(ctx context.Context, apiErr error) (Target, error) {
	e := p.engine

	message := authapi.ServerMessage(apiErr)
	if message == "" {
		message = e.config.MPIN.DefaultError
	}

	p.mu.Lock()
	p.digits = p.digits[:0]
	p.attempts++
	p.message = message
	locked := p.attempts >= e.config.MPIN.MaxAttempts
	if locked {
		p.state = EntryLocked
		p.lockedUntil = e.now().Add(e.config.MPIN.LockoutDuration)
	} else {
		p.state = EntryIdle
	}
	attempts := p.attempts
	shake := p.hooks.Shake
	p.mu.Unlock()

	if shake != nil {
		shake()
	}

	e.metricInc(MetricLoginFailure)
	if locked {
		e.metricInc(MetricLockoutEntered)
	}
	e.emitAudit(ctx, "login", false, p.phone, TargetNone, apiErr, map[string]string{
		"attempts": strconv.Itoa(attempts),
	})
	return TargetNone, ErrInvalidPIN
}

// fail resets the entry after a non-rejection failure. attempts of -1
// keeps the current counter.
func (p *PinEntry) fail(state EntryState, attempts int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.digits = p.digits[:0]
	if attempts >= 0 {
		p.attempts = attempts
	}
	p.message = message
}

// BiometricUnlock runs a biometric challenge and, on success, replays the
// sealed MPIN through the normal submission path. The caller gets the same
// target a manual entry would have produced.
func (p *PinEntry) BiometricUnlock(ctx context.Context) (Target, error) {
	e := p.engine

	if e.probe == nil || e.vault == nil {
		return TargetNone, ErrBiometricUnavailable
	}
	if !e.probe.HasHardware() || !e.probe.IsEnrolled() {
		return TargetNone, ErrBiometricUnavailable
	}
	if !e.creds.BiometricEnabled(ctx) {
		return TargetNone, ErrBiometricUnavailable
	}
	sealed, ok := e.creds.SavedMPIN(ctx, p.phone)
	if !ok {
		return TargetNone, ErrBiometricUnavailable
	}

	result, err := e.probe.Authenticate(ctx, e.config.Biometric.Prompt)
	if err != nil {
		e.metricInc(MetricBiometricFailure)
		return TargetNone, ErrBiometricUnavailable
	}
	if !result.Success {
		e.metricInc(MetricBiometricFailure)
		return TargetNone, ErrBiometricDenied
	}
	e.metricInc(MetricBiometricSuccess)
	if err := e.creds.MarkBiometricSessionVerified(ctx); err != nil {
		logf("mark biometric session: %v", err)
	}

	pin, err := e.vault.Open(sealed)
	if err != nil {
		// The blob is garbage; drop it so the opt-in can be redone.
		if err := e.creds.RemoveSavedMPIN(ctx, p.phone); err != nil {
			logf("remove stale sealed mpin: %v", err)
		}
		return TargetNone, ErrBiometricUnavailable
	}

	p.mu.Lock()
	if p.torndown {
		p.mu.Unlock()
		return TargetNone, ErrFlowTornDown
	}
	p.refreshLockLocked()
	if p.state == EntryLocked || p.state == EntrySubmitting || p.state == EntrySuccess {
		p.mu.Unlock()
		return TargetNone, nil
	}
	p.digits = p.digits[:0]
	for _, ch := range pin {
		p.digits = append(p.digits, int(ch-'0'))
	}
	p.state = EntryEntering
	p.mu.Unlock()

	return p.submit(ctx)
}

// RunLockoutTicker drives per-second snapshot callbacks while a lockout is
// counting down. It returns when the lockout expires, the entry is torn
// down, or ctx is cancelled. Hosts that render countdowns from their own
// frame loop can skip this and poll [PinEntry.Snapshot] instead.
func (p *PinEntry) RunLockoutTicker(ctx context.Context, fn func(PinEntrySnapshot)) {
	ticker := p.engine.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			snap := p.Snapshot()
			if fn != nil {
				fn(snap)
			}
			if snap.State != EntryLocked {
				return
			}
		}
	}
}

// Teardown marks the entry dead. Subsequent keypad operations are no-ops
// or return [ErrFlowTornDown].
func (p *PinEntry) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.torndown = true
	p.digits = p.digits[:0]
}

func digitsToString(digits []int) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = byte('0' + d)
	}
	return string(out)
}
