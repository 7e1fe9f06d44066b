package mpinauth

import (
	"context"
	"testing"
)

func startPinSetup(t *testing.T, te *testEngine) *PinSetup {
	t.Helper()
	ctx := context.Background()
	if err := te.repo().SetTempPhone(ctx, testPhone); err != nil {
		t.Fatalf("stash phone: %v", err)
	}
	setup, err := te.engine.StartPinSetup(ctx, PurposeVerify)
	if err != nil {
		t.Fatalf("StartPinSetup failed: %v", err)
	}
	return setup
}

func fillRows(t *testing.T, setup *PinSetup, pin, confirm string) {
	t.Helper()
	for i, ch := range pin {
		if err := setup.SetPinDigit(i, int(ch-'0')); err != nil {
			t.Fatalf("SetPinDigit(%d) failed: %v", i, err)
		}
	}
	for i, ch := range confirm {
		if err := setup.SetConfirmDigit(i, int(ch-'0')); err != nil {
			t.Fatalf("SetConfirmDigit(%d) failed: %v", i, err)
		}
	}
}

func TestStartPinSetupWithoutStashedPhoneFails(t *testing.T) {
	te := newTestEngine(t)
	if _, err := te.engine.StartPinSetup(context.Background(), PurposeVerify); err != ErrPhoneMissing {
		t.Fatalf("expected ErrPhoneMissing, got %v", err)
	}
}

func TestSubmitEnabledGate(t *testing.T) {
	te := newTestEngine(t)
	setup := startPinSetup(t, te)

	if setup.SubmitEnabled() {
		t.Fatal("expected gate closed on empty rows")
	}

	fillRows(t, setup, testPIN, "")
	if setup.SubmitEnabled() {
		t.Fatal("expected gate closed with empty confirmation")
	}

	fillRows(t, setup, testPIN, "135791")
	if setup.SubmitEnabled() {
		t.Fatal("expected gate closed on mismatch")
	}

	fillRows(t, setup, testPIN, testPIN)
	if !setup.SubmitEnabled() {
		t.Fatal("expected gate open on matching rows")
	}
}

func TestSubmitGateReclosesOnEdit(t *testing.T) {
	te := newTestEngine(t)
	setup := startPinSetup(t, te)

	fillRows(t, setup, testPIN, testPIN)
	if !setup.SubmitEnabled() {
		t.Fatal("expected gate open")
	}

	setup.ClearConfirmDigit(3)
	if setup.SubmitEnabled() {
		t.Fatal("expected gate closed after clearing a box")
	}

	if err := setup.SetConfirmDigit(3, 9); err != nil {
		t.Fatalf("SetConfirmDigit failed: %v", err)
	}
	if setup.SubmitEnabled() {
		t.Fatal("expected gate closed after divergence")
	}
}

func TestSubmitIncompleteRejectedLocally(t *testing.T) {
	te := newTestEngine(t)
	setup := startPinSetup(t, te)
	fillRows(t, setup, testPIN, "")

	if _, err := setup.Submit(context.Background()); err != ErrPINIncomplete {
		t.Fatalf("expected ErrPINIncomplete, got %v", err)
	}
	if te.api.calls("set_pin") != 0 {
		t.Fatal("incomplete rows must not hit the network")
	}
}

func TestSubmitMismatchRejectedLocally(t *testing.T) {
	te := newTestEngine(t)
	setup := startPinSetup(t, te)
	fillRows(t, setup, testPIN, "135791")

	if _, err := setup.Submit(context.Background()); err != ErrPINMismatch {
		t.Fatalf("expected ErrPINMismatch, got %v", err)
	}
	if te.api.calls("set_pin") != 0 {
		t.Fatal("mismatched rows must not hit the network")
	}
}

func TestSubmitPersistsRecordAndRoutesLogin(t *testing.T) {
	te := newTestEngine(t)
	setup := startPinSetup(t, te)
	fillRows(t, setup, testPIN, testPIN)
	ctx := context.Background()

	target, err := setup.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if target != TargetLogin {
		t.Fatalf("expected login, got %v", target)
	}
	if te.api.calls("set_pin") != 1 {
		t.Fatalf("expected 1 SetPIN call, got %d", te.api.calls("set_pin"))
	}

	phone, ok := te.repo().Phone(ctx)
	if !ok || phone != testPhone {
		t.Fatalf("expected phone persisted, got %q ok=%v", phone, ok)
	}
	if !te.repo().PinConfigured(ctx, testPhone) {
		t.Fatal("expected pin flags set")
	}
	if _, ok := te.repo().TempPhone(ctx); ok {
		t.Fatal("expected transient holder cleared")
	}
}

func TestSubmitResetPurposeUsesResetEndpoint(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	if err := te.repo().SetResetPhone(ctx, testPhone); err != nil {
		t.Fatalf("stash reset phone: %v", err)
	}
	setup, err := te.engine.StartPinSetup(ctx, PurposeReset)
	if err != nil {
		t.Fatalf("StartPinSetup failed: %v", err)
	}
	fillRows(t, setup, testPIN, testPIN)

	target, err := setup.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if target != TargetLogin {
		t.Fatalf("expected login, got %v", target)
	}
	if te.api.calls("reset_pin") != 1 {
		t.Fatalf("expected 1 ResetPIN call, got %d", te.api.calls("reset_pin"))
	}
	if te.api.calls("set_pin") != 0 {
		t.Fatal("reset must not call the setup endpoint")
	}
	if _, ok := te.repo().ResetPhone(ctx); ok {
		t.Fatal("expected reset holder cleared")
	}
}

func TestSubmitServerRejection(t *testing.T) {
	te := newTestEngine(t)
	te.api.setPINErr = errStatusNoMessage()
	setup := startPinSetup(t, te)
	fillRows(t, setup, testPIN, testPIN)
	ctx := context.Background()

	if _, err := setup.Submit(ctx); err != ErrPINRejected {
		t.Fatalf("expected ErrPINRejected, got %v", err)
	}
	if _, ok := te.repo().Phone(ctx); ok {
		t.Fatal("rejected setup must not persist the phone")
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	te := newTestEngine(t)
	te.api.setPINErr = errTransportForTest()
	setup := startPinSetup(t, te)
	fillRows(t, setup, testPIN, testPIN)

	if _, err := setup.Submit(context.Background()); err != ErrNetworkUnavailable {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
}
