package credstore

import (
	"context"
	"strconv"
)

const boolTrue = "true"

// Repository wraps a Store with typed accessors per credential-record key.
// It is the single owner of the key layout: flow controllers never touch
// raw keys. Every read treats a store failure as "value absent".
type Repository struct {
	store Store
}

// NewRepository creates a Repository over the given Store.
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// Store exposes the underlying raw store.
func (r *Repository) Store() Store {
	return r.store
}

func (r *Repository) get(ctx context.Context, key string) (string, bool) {
	val, err := r.store.Get(ctx, key)
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

func (r *Repository) getBool(ctx context.Context, key string) bool {
	val, ok := r.get(ctx, key)
	return ok && val == boolTrue
}

// Phone returns the verified subscriber number, if any. Absence means
// "unverified user".
func (r *Repository) Phone(ctx context.Context) (string, bool) {
	return r.get(ctx, KeyPhone)
}

// Token returns the bearer session token, if any.
func (r *Repository) Token(ctx context.Context) (string, bool) {
	return r.get(ctx, KeyToken)
}

// TempPhone returns the transient mid-verification phone holder.
func (r *Repository) TempPhone(ctx context.Context) (string, bool) {
	return r.get(ctx, KeyTempPhone)
}

// ResetPhone returns the transient forgot-MPIN phone holder.
func (r *Repository) ResetPhone(ctx context.Context) (string, bool) {
	return r.get(ctx, KeyResetPhone)
}

// SetTempPhone stashes a phone for the flow that picks up next, typically
// the login screen after a routing decision.
func (r *Repository) SetTempPhone(ctx context.Context, phone string) error {
	return r.store.Set(ctx, KeyTempPhone, phone)
}

// SetResetPhone stashes the phone driving a forgot-MPIN flow.
func (r *Repository) SetResetPhone(ctx context.Context, phone string) error {
	return r.store.Set(ctx, KeyResetPhone, phone)
}

// PinConfigured reports whether a PIN exists for the phone. It ORs the
// global flag with the per-phone flag; either one claiming a PIN exists is
// enough to suppress the setup screen again.
func (r *Repository) PinConfigured(ctx context.Context, phone string) bool {
	if r.getBool(ctx, KeyPinSet) {
		return true
	}
	return phone != "" && r.getBool(ctx, PinSetKey(phone))
}

// CompleteVerification persists a phone as verified (OTP passed, PIN
// already exists) and clears the transient holder.
func (r *Repository) CompleteVerification(ctx context.Context, phone string) error {
	if err := r.store.Set(ctx, KeyPhone, phone); err != nil {
		return err
	}
	return r.store.Remove(ctx, KeyTempPhone)
}

// CompletePinSetup atomically persists the phone together with both pin
// flags, then clears every transient phone holder. The multi-key write is
// the one transactional sequence the record guarantees.
func (r *Repository) CompletePinSetup(ctx context.Context, phone string) error {
	err := r.store.MultiSet(ctx, [][2]string{
		{KeyPhone, phone},
		{KeyPinSet, boolTrue},
		{PinSetKey(phone), boolTrue},
	})
	if err != nil {
		return err
	}
	return r.store.MultiRemove(ctx, []string{KeyTempPhone, KeyResetPhone})
}

// SaveLogin persists the session token and cached profile issued by a
// successful login and clears the transient phone holders. The phone is
// written in the same atomic batch, so a token can never exist without it.
func (r *Repository) SaveLogin(ctx context.Context, phone, token, profileJSON string) error {
	pairs := [][2]string{
		{KeyPhone, phone},
		{KeyToken, token},
	}
	if profileJSON != "" {
		pairs = append(pairs, [2]string{KeyProfile, profileJSON})
	}
	if err := r.store.MultiSet(ctx, pairs); err != nil {
		return err
	}
	return r.store.MultiRemove(ctx, []string{KeyTempPhone, KeyResetPhone})
}

// ClearLogin removes the session token, cached profile, and the
// process-lifetime biometric flag. Phone and pin flags survive: the user
// is verified but logged out.
func (r *Repository) ClearLogin(ctx context.Context) error {
	return r.store.MultiRemove(ctx, []string{KeyToken, KeyProfile, KeyBiometricSession})
}

// BiometricEnabled reports the user's biometric opt-in.
func (r *Repository) BiometricEnabled(ctx context.Context) bool {
	return r.getBool(ctx, KeyBiometricEnabled)
}

// SetBiometricEnabled persists the biometric opt-in; disabling removes the
// key outright.
func (r *Repository) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	if !enabled {
		return r.store.Remove(ctx, KeyBiometricEnabled)
	}
	return r.store.Set(ctx, KeyBiometricEnabled, boolTrue)
}

// BiometricSessionVerified reports whether a biometric challenge already
// succeeded in the current process lifetime.
func (r *Repository) BiometricSessionVerified(ctx context.Context) bool {
	return r.getBool(ctx, KeyBiometricSession)
}

// MarkBiometricSessionVerified records a passed biometric challenge so the
// prompt fires at most once per process lifetime.
func (r *Repository) MarkBiometricSessionVerified(ctx context.Context) error {
	return r.store.Set(ctx, KeyBiometricSession, boolTrue)
}

// ClearBiometricSession resets the process-lifetime flag; called at cold
// start so the next foreground prompts again.
func (r *Repository) ClearBiometricSession(ctx context.Context) error {
	return r.store.Remove(ctx, KeyBiometricSession)
}

// SavedMPIN returns the sealed MPIN blob for a phone, if any.
func (r *Repository) SavedMPIN(ctx context.Context, phone string) (string, bool) {
	return r.get(ctx, SavedMPINKey(phone))
}

// SetSavedMPIN stores the sealed MPIN blob biometric unlock replays. The
// caller seals it first; the repository never sees plaintext.
func (r *Repository) SetSavedMPIN(ctx context.Context, phone, sealed string) error {
	return r.store.Set(ctx, SavedMPINKey(phone), sealed)
}

// RemoveSavedMPIN drops the sealed MPIN blob for a phone.
func (r *Repository) RemoveSavedMPIN(ctx context.Context, phone string) error {
	return r.store.Remove(ctx, SavedMPINKey(phone))
}

// LastActiveTime returns the epoch-millisecond backgrounding timestamp.
func (r *Repository) LastActiveTime(ctx context.Context) (int64, bool) {
	val, ok := r.get(ctx, KeyLastActiveTime)
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// SetLastActiveTime records the backgrounding instant, in epoch
// milliseconds, for the foreground timeout check.
func (r *Repository) SetLastActiveTime(ctx context.Context, epochMillis int64) error {
	return r.store.Set(ctx, KeyLastActiveTime, strconv.FormatInt(epochMillis, 10))
}

// ClearLastActiveTime drops the backgrounding timestamp.
func (r *Repository) ClearLastActiveTime(ctx context.Context) error {
	return r.store.Remove(ctx, KeyLastActiveTime)
}

// ExpireSession clears the verified phone, the global pin flag, and the
// backgrounding timestamp, then raises the session-expired sentinel for
// the decision engine to consume.
func (r *Repository) ExpireSession(ctx context.Context) error {
	err := r.store.MultiRemove(ctx, []string{KeyPhone, KeyPinSet, KeyLastActiveTime, KeyToken, KeyProfile})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeySessionExpired, boolTrue)
}

// SessionExpired reports whether the session-timeout sentinel is set.
func (r *Repository) SessionExpired(ctx context.Context) bool {
	return r.getBool(ctx, KeySessionExpired)
}

// ClearSessionExpired consumes the session-timeout sentinel. The decision
// engine calls it so a timeout routes to login exactly once.
func (r *Repository) ClearSessionExpired(ctx context.Context) error {
	return r.store.Remove(ctx, KeySessionExpired)
}

// ProfileJSON returns the cached subscriber profile, if any.
func (r *Repository) ProfileJSON(ctx context.Context) (string, bool) {
	return r.get(ctx, KeyProfile)
}

// SetProfileJSON caches the subscriber profile payload verbatim.
func (r *Repository) SetProfileJSON(ctx context.Context, profileJSON string) error {
	return r.store.Set(ctx, KeyProfile, profileJSON)
}
