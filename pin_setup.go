package mpinauth

import (
	"context"
	"errors"
	"sync"

	"github.com/subtel/mpinauth/authapi"
)

// PinSetup is the create-MPIN screen state machine: two digit rows, the
// new PIN and its confirmation, plus a submit gate that only opens when
// both rows are complete and equal. Create one via [Engine.StartPinSetup].
type PinSetup struct {
	engine  *Engine
	phone   string
	purpose FlowPurpose

	mu       sync.Mutex
	pin      []int // -1 marks an empty box
	confirm  []int
	torndown bool
}

// StartPinSetup creates the setup state machine for the phone stashed by
// the OTP screen. The reset wizard reads the reset holder; the first-time
// wizard reads the verification holder.
func (e *Engine) StartPinSetup(ctx context.Context, purpose FlowPurpose) (*PinSetup, error) {
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

	pin := make([]int, e.config.MPIN.Digits)
	confirm := make([]int, e.config.MPIN.Digits)
	for i := range pin {
		pin[i] = -1
		confirm[i] = -1
	}

	return &PinSetup{
		engine:  e,
		phone:   phone,
		purpose: purpose,
		pin:     pin,
		confirm: confirm,
	}, nil
}

// Phone returns the subscriber number the PIN is being created for.
func (s *PinSetup) Phone() string {
	return s.phone
}

// SetPinDigit fills box i of the new-PIN row.
func (s *PinSetup) SetPinDigit(i, digit int) error {
	return s.setDigit(s.pinRow, i, digit)
}

// SetConfirmDigit fills box i of the confirmation row.
func (s *PinSetup) SetConfirmDigit(i, digit int) error {
	return s.setDigit(s.confirmRow, i, digit)
}

// ClearPinDigit empties box i of the new-PIN row.
func (s *PinSetup) ClearPinDigit(i int) {
	s.clearDigit(s.pinRow, i)
}

// ClearConfirmDigit empties box i of the confirmation row.
func (s *PinSetup) ClearConfirmDigit(i int) {
	s.clearDigit(s.confirmRow, i)
}

func (s *PinSetup) pinRow() []int     { return s.pin }
func (s *PinSetup) confirmRow() []int { return s.confirm }

func (s *PinSetup) setDigit(row func() []int, i, digit int) error {
	if digit < 0 || digit > 9 {
		return ErrDigitOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return ErrFlowTornDown
	}
	r := row()
	if i < 0 || i >= len(r) {
		return ErrDigitOutOfRange
	}
	r[i] = digit
	return nil
}

func (s *PinSetup) clearDigit(row func() []int, i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	r := row()
	if i < 0 || i >= len(r) {
		return
	}
	r[i] = -1
}

// SubmitEnabled reports whether both rows are complete and identical. The
// gate re-closes the moment any box is cleared or diverges; it carries no
// memory of having been open.
func (s *PinSetup) SubmitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, err := s.codesLocked()
	return err == nil
}

func (s *PinSetup) codesLocked() (string, string, error) {
	pin := make([]byte, 0, len(s.pin))
	confirm := make([]byte, 0, len(s.confirm))
	for i := range s.pin {
		if s.pin[i] < 0 || s.confirm[i] < 0 {
			return "", "", ErrPINIncomplete
		}
		pin = append(pin, byte('0'+s.pin[i]))
		confirm = append(confirm, byte('0'+s.confirm[i]))
	}
	if string(pin) != string(confirm) {
		return "", "", ErrPINMismatch
	}
	return string(pin), string(confirm), nil
}

// Submit registers the new MPIN with the auth API. Incomplete or
// mismatched rows are rejected locally with no network call. On success
// the phone persists as verified with both pin flags set and the target is
// the login screen.
func (s *PinSetup) Submit(ctx context.Context) (Target, error) {
	s.mu.Lock()
	if s.torndown {
		s.mu.Unlock()
		return TargetNone, ErrFlowTornDown
	}
	pin, _, err := s.codesLocked()
	s.mu.Unlock()
	if err != nil {
		return TargetNone, err
	}

	e := s.engine

	call := e.api.SetPIN
	event := "pin_setup"
	if s.purpose == PurposeReset {
		call = e.api.ResetPIN
		event = "pin_reset"
	}

	if err := call(ctx, s.phone, pin); err != nil {
		e.metricInc(MetricPinSetupFailure)
		e.emitAudit(ctx, event, false, s.phone, TargetNone, err, nil)
		if errors.Is(err, authapi.ErrTransport) {
			return TargetNone, ErrNetworkUnavailable
		}
		return TargetNone, ErrPINRejected
	}

	if err := e.creds.CompletePinSetup(ctx, s.phone); err != nil {
		return TargetNone, err
	}

	e.metricInc(MetricPinSetupSuccess)
	e.emitAudit(ctx, event, true, s.phone, TargetLogin, nil, nil)
	return TargetLogin, nil
}

// Teardown marks the setup dead.
func (s *PinSetup) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torndown = true
	for i := range s.pin {
		s.pin[i] = -1
		s.confirm[i] = -1
	}
}
