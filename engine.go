package mpinauth

import (
	"context"
	"sync"
	"time"

	"github.com/subtel/mpinauth/authapi"
	"github.com/subtel/mpinauth/biometric"
	"github.com/subtel/mpinauth/credstore"
	"github.com/subtel/mpinauth/internal/clock"
	"github.com/subtel/mpinauth/vault"
)

// Engine is the authentication core. It owns the credential record, the
// routing decision, and the factories for the flow controllers. Build one
// per process via [New].
type Engine struct {
	config  Config
	creds   *credstore.Repository
	api     authapi.Client
	probe   biometric.Probe
	vault   vault.Vault
	clock   clock.Clock
	audit   *auditDispatcher
	metrics *Metrics

	mu            sync.Mutex
	decisionState DecisionState
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// Credentials exposes the typed credential repository, for host apps that
// need direct reads (settings screens, diagnostics).
func (e *Engine) Credentials() *credstore.Repository {
	return e.creds
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

// emitAudit builds and dispatches one audit event. Best effort; never
// blocks the calling flow beyond the dispatcher's policy.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, phone string, target Target, opErr error, metadata map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		Phone:     maskPhone(phone),
		DeviceID:  deviceIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if target != TargetNone {
		event.Target = target.String()
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if v := appVersionFromContext(ctx); v != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["app_version"] = v
	}

	e.audit.Emit(ctx, event)
}

// Logout clears the session token, the cached profile, and the saved MPIN
// blob for the current phone. The verified phone and pin flags survive, so
// the next launch routes to the login screen rather than re-verification.
func (e *Engine) Logout(ctx context.Context) error {
	phone, _ := e.creds.Phone(ctx)

	if err := e.creds.ClearLogin(ctx); err != nil {
		e.emitAudit(ctx, "logout", false, phone, TargetNone, err, nil)
		return err
	}
	if phone != "" {
		if err := e.creds.RemoveSavedMPIN(ctx, phone); err != nil {
			logf("remove saved mpin on logout: %v", err)
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, "logout", true, phone, TargetLogin, nil, nil)
	return nil
}

// EnableBiometric opts the user in to biometric unlock. The supplied MPIN
// is sealed by the vault before it is stored; without a vault the opt-in is
// refused rather than caching a recoverable PIN.
func (e *Engine) EnableBiometric(ctx context.Context, pin string) error {
	if e.vault == nil {
		return ErrVaultUnavailable
	}
	if len(pin) != e.config.MPIN.Digits {
		return ErrPINIncomplete
	}

	phone, ok := e.creds.Phone(ctx)
	if !ok {
		return ErrPhoneMissing
	}

	sealed, err := e.vault.Seal(pin)
	if err != nil {
		e.emitAudit(ctx, "biometric_enable", false, phone, TargetNone, err, nil)
		return ErrVaultUnavailable
	}
	if err := e.creds.SetSavedMPIN(ctx, phone, sealed); err != nil {
		return err
	}
	if err := e.creds.SetBiometricEnabled(ctx, true); err != nil {
		return err
	}

	e.emitAudit(ctx, "biometric_enable", true, phone, TargetNone, nil, nil)
	return nil
}

// DisableBiometric opts the user out and removes the sealed MPIN blob.
func (e *Engine) DisableBiometric(ctx context.Context) error {
	phone, _ := e.creds.Phone(ctx)

	if err := e.creds.SetBiometricEnabled(ctx, false); err != nil {
		return err
	}
	if phone != "" {
		if err := e.creds.RemoveSavedMPIN(ctx, phone); err != nil {
			return err
		}
	}
	if err := e.creds.ClearBiometricSession(ctx); err != nil {
		return err
	}

	e.emitAudit(ctx, "biometric_disable", true, phone, TargetNone, nil, nil)
	return nil
}

// Profile returns the cached subscriber profile, fetching it from the auth
// API when the cache is empty and a live token exists.
func (e *Engine) Profile(ctx context.Context) (UserProfile, error) {
	if raw, ok := e.creds.ProfileJSON(ctx); ok {
		if profile, err := decodeProfile(raw); err == nil {
			return profile, nil
		}
	}

	token, ok := e.creds.Token(ctx)
	if !ok {
		return UserProfile{}, ErrPhoneMissing
	}

	raw, err := e.api.Profile(ctx, token)
	if err != nil {
		return UserProfile{}, err
	}
	profile, err := decodeProfile(string(raw))
	if err != nil {
		return UserProfile{}, err
	}
	if err := e.creds.SetProfileJSON(ctx, string(raw)); err != nil {
		logf("cache profile: %v", err)
	}
	return profile, nil
}
