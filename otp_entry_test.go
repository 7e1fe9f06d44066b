package mpinauth

import (
	"context"
	"testing"
	"time"

	"github.com/subtel/mpinauth/credstore"
)

func startVerifyOTP(t *testing.T, te *testEngine) *OTPEntry {
	t.Helper()
	ctx := context.Background()
	if err := te.repo().SetTempPhone(ctx, testPhone); err != nil {
		t.Fatalf("stash phone: %v", err)
	}
	entry, err := te.engine.StartOTP(ctx, PurposeVerify, false)
	if err != nil {
		t.Fatalf("StartOTP failed: %v", err)
	}
	return entry
}

func fillOTP(t *testing.T, entry *OTPEntry, code string) {
	t.Helper()
	for i, ch := range code {
		if err := entry.SetDigit(i, int(ch-'0')); err != nil {
			t.Fatalf("SetDigit(%d) failed: %v", i, err)
		}
	}
}

func TestStartOTPSendsCode(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)

	if te.api.calls("send_otp") != 1 {
		t.Fatalf("expected 1 send, got %d", te.api.calls("send_otp"))
	}
	if entry.Phone() != testPhone {
		t.Fatalf("expected %q, got %q", testPhone, entry.Phone())
	}
}

func TestStartOTPWithoutStashedPhoneFails(t *testing.T) {
	te := newTestEngine(t)
	if _, err := te.engine.StartOTP(context.Background(), PurposeVerify, false); err != ErrPhoneMissing {
		t.Fatalf("expected ErrPhoneMissing, got %v", err)
	}
	if te.api.calls("send_otp") != 0 {
		t.Fatal("expected no send without a phone")
	}
}

func TestSetDigitAdvancesFocus(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)

	if err := entry.SetDigit(0, 7); err != nil {
		t.Fatalf("SetDigit failed: %v", err)
	}
	if got := entry.FocusIndex(); got != 1 {
		t.Fatalf("expected focus 1, got %d", got)
	}

	fillOTP(t, entry, testOTP)
	// The last box keeps focus rather than running off the row.
	if got := entry.FocusIndex(); got != 5 {
		t.Fatalf("expected focus pinned to 5, got %d", got)
	}
}

func TestBackspaceWalksBackwards(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)

	fillOTP(t, entry, "123456")

	// Filled box empties in place.
	entry.Backspace(5)
	if got := entry.FocusIndex(); got != 5 {
		t.Fatalf("expected focus 5, got %d", got)
	}
	if got := entry.Snapshot().Filled; got != 5 {
		t.Fatalf("expected 5 filled, got %d", got)
	}

	// Empty box clears the previous one and moves focus there.
	entry.Backspace(5)
	if got := entry.FocusIndex(); got != 4 {
		t.Fatalf("expected focus 4, got %d", got)
	}
	if got := entry.Snapshot().Filled; got != 4 {
		t.Fatalf("expected 4 filled, got %d", got)
	}
}

func TestResendBlockedDuringCooldown(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)

	if entry.CanResend() {
		t.Fatal("expected resend blocked right after send")
	}
	if err := entry.Resend(context.Background()); err != ErrOTPResendCooldown {
		t.Fatalf("expected ErrOTPResendCooldown, got %v", err)
	}
	if te.api.calls("send_otp") != 1 {
		t.Fatal("blocked resend must not hit the network")
	}

	te.clk.Advance(29 * time.Second)
	if entry.CanResend() {
		t.Fatalf("expected still blocked at 29s, remaining %v", entry.ResendRemaining())
	}

	te.clk.Advance(time.Second)
	if !entry.CanResend() {
		t.Fatal("expected resend available at 30s")
	}
}

func TestResendClearsEntryAndRestartsCooldown(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)
	fillOTP(t, entry, "123456")

	te.clk.Advance(30 * time.Second)
	if err := entry.Resend(context.Background()); err != nil {
		t.Fatalf("Resend failed: %v", err)
	}

	snap := entry.Snapshot()
	if snap.Filled != 0 {
		t.Fatalf("expected boxes cleared, got %d filled", snap.Filled)
	}
	if snap.Focus != 0 {
		t.Fatalf("expected focus reset, got %d", snap.Focus)
	}
	if snap.ResendRemaining != 30*time.Second {
		t.Fatalf("expected cooldown restarted, got %v", snap.ResendRemaining)
	}
	if te.api.calls("send_otp") != 2 {
		t.Fatalf("expected 2 sends, got %d", te.api.calls("send_otp"))
	}
}

func TestVerifyIncompleteRejectedLocally(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)
	fillOTP(t, entry, "12345")

	if _, err := entry.Verify(context.Background()); err != ErrOTPIncomplete {
		t.Fatalf("expected ErrOTPIncomplete, got %v", err)
	}
	if te.api.calls("verify_otp") != 0 {
		t.Fatal("incomplete entry must not hit the network")
	}
}

func TestVerifyInvalidCodeClearsEntry(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)
	te.api.verifyOTPErr = errStatusNoMessage()
	fillOTP(t, entry, testOTP)

	if _, err := entry.Verify(context.Background()); err != ErrOTPInvalid {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if got := entry.Snapshot().Filled; got != 0 {
		t.Fatalf("expected boxes cleared, got %d", got)
	}
}

func TestVerifyTransportFailure(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)
	te.api.verifyOTPErr = errTransportForTest()
	fillOTP(t, entry, testOTP)

	if _, err := entry.Verify(context.Background()); err != ErrNetworkUnavailable {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
}

func TestVerifyNewUserRoutesToPinSetup(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)
	fillOTP(t, entry, testOTP)
	ctx := context.Background()

	target, err := entry.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if target != TargetSetupPIN {
		t.Fatalf("expected pin setup, got %v", target)
	}

	// The stash survives for the setup screen to consume.
	phone, ok := te.repo().TempPhone(ctx)
	if !ok || phone != testPhone {
		t.Fatalf("expected stashed phone kept, got %q ok=%v", phone, ok)
	}
	if _, ok := te.repo().Phone(ctx); ok {
		t.Fatal("phone must not persist as verified before PIN setup")
	}
}

func TestVerifyServerHasPinRoutesToLogin(t *testing.T) {
	te := newTestEngine(t)
	te.api.hasPin = true
	entry := startVerifyOTP(t, te)
	fillOTP(t, entry, testOTP)
	ctx := context.Background()

	target, err := entry.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if target != TargetLogin {
		t.Fatalf("expected login, got %v", target)
	}

	phone, ok := te.repo().Phone(ctx)
	if !ok || phone != testPhone {
		t.Fatalf("expected phone persisted as verified, got %q ok=%v", phone, ok)
	}
}

func TestVerifyLocalPinFlagRoutesToLogin(t *testing.T) {
	// The server says no PIN, but the device remembers one for this phone.
	te := newTestEngine(t)
	ctx := context.Background()
	if err := te.store.Set(ctx, credstore.PinSetKey(testPhone), "true"); err != nil {
		t.Fatalf("seed pin flag: %v", err)
	}
	entry := startVerifyOTP(t, te)
	fillOTP(t, entry, testOTP)

	target, err := entry.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if target != TargetLogin {
		t.Fatalf("expected login, got %v", target)
	}
}

func TestVerifySkipParamRoutesToLogin(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()
	if err := te.repo().SetTempPhone(ctx, testPhone); err != nil {
		t.Fatalf("stash phone: %v", err)
	}
	entry, err := te.engine.StartOTP(ctx, PurposeVerify, true)
	if err != nil {
		t.Fatalf("StartOTP failed: %v", err)
	}
	fillOTP(t, entry, testOTP)

	target, err := entry.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if target != TargetLogin {
		t.Fatalf("expected login, got %v", target)
	}
}

func TestVerifyResetPurposeAlwaysRoutesToSetup(t *testing.T) {
	te := newTestEngine(t)
	te.api.hasPin = true
	ctx := context.Background()
	if err := te.repo().SetResetPhone(ctx, testPhone); err != nil {
		t.Fatalf("stash reset phone: %v", err)
	}
	entry, err := te.engine.StartOTP(ctx, PurposeReset, false)
	if err != nil {
		t.Fatalf("StartOTP failed: %v", err)
	}
	fillOTP(t, entry, testOTP)

	target, err := entry.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if target != TargetSetupPIN {
		t.Fatalf("expected pin setup, got %v", target)
	}
}

func TestRunResendTickerFinishesAtZero(t *testing.T) {
	te := newTestEngine(t)
	entry := startVerifyOTP(t, te)

	done := make(chan time.Duration, 1)
	go func() {
		var last time.Duration = -1
		entry.RunResendTicker(context.Background(), func(remaining time.Duration) {
			last = remaining
		})
		done <- last
	}()

	time.Sleep(10 * time.Millisecond)
	for i := 0; i < 31; i++ {
		te.clk.Advance(time.Second)
		time.Sleep(time.Millisecond)
	}

	select {
	case last := <-done:
		if last != 0 {
			t.Fatalf("expected final callback at zero, got %v", last)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not finish")
	}
}
