package mpinauth

import (
	"context"
	"encoding/json"
)

/*
====================================
ROUTING DECISION
====================================
*/

// Decide evaluates the persisted credential record and returns exactly one
// navigation target for app launch or foreground resume.
//
// The evaluation order is fixed: consumed session-expiry sentinel first,
// then verified-phone presence, then token liveness, then the biometric
// gate, then profile availability. The first rule that fires wins.
//
// Decide is reentrancy-guarded. While a decision is in flight or its
// navigation has not been acknowledged via [Engine.NavigationComplete],
// further calls return [ErrDecisionInFlight] and no second navigation is
// produced.
func (e *Engine) Decide(ctx context.Context) (Target, error) {
	e.mu.Lock()
	if e.decisionState != DecisionIdle {
		e.mu.Unlock()
		return TargetNone, ErrDecisionInFlight
	}
	e.decisionState = DecisionDeciding
	e.mu.Unlock()

	start := e.now()
	target, err := e.decide(ctx)
	e.metrics.Observe(MetricDecideLatency, e.now().Sub(start))

	e.mu.Lock()
	if err != nil {
		e.decisionState = DecisionIdle
	} else {
		e.decisionState = DecisionNavigated
	}
	e.mu.Unlock()

	return target, err
}

// NavigationComplete acknowledges that the host app finished navigating to
// the last decided target, returning the engine to the idle state.
func (e *Engine) NavigationComplete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.decisionState == DecisionNavigated {
		e.decisionState = DecisionIdle
	}
}

// DecisionState reports the current reentrancy state.
func (e *Engine) DecisionState() DecisionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decisionState
}

func (e *Engine) decide(ctx context.Context) (Target, error) {
	// A background timeout fired earlier. Consume the sentinel and route
	// straight to login; phone and pin flags were already cleared.
	if e.creds.SessionExpired(ctx) {
		if err := e.creds.ClearSessionExpired(ctx); err != nil {
			logf("clear session-expired sentinel: %v", err)
		}
		e.metricInc(MetricDecisionLogin)
		e.emitAudit(ctx, "decide", true, "", TargetLogin, nil, map[string]string{"reason": "session_expired"})
		return TargetLogin, nil
	}

	phone, ok := e.creds.Phone(ctx)
	if !ok {
		e.metricInc(MetricDecisionPhoneVerify)
		e.emitAudit(ctx, "decide", true, "", TargetPhoneVerify, nil, nil)
		return TargetPhoneVerify, nil
	}

	token, hasToken := e.creds.Token(ctx)
	if !hasToken || tokenExpired(token, e.now()) {
		// Verified subscriber without a live session. Stash the phone so
		// the login screen knows who is logging in.
		if err := e.creds.SetTempPhone(ctx, phone); err != nil {
			logf("stash phone for login: %v", err)
		}
		e.metricInc(MetricDecisionLogin)
		e.emitAudit(ctx, "decide", true, phone, TargetLogin, nil, map[string]string{"reason": "no_live_token"})
		return TargetLogin, nil
	}

	if target, done := e.biometricGate(ctx, phone); done {
		return target, nil
	}

	if target, done := e.loadProfileForHome(ctx, phone, token); done {
		return target, nil
	}

	e.metricInc(MetricDecisionHome)
	e.emitAudit(ctx, "decide", true, phone, TargetHome, nil, nil)
	return TargetHome, nil
}

// biometricGate runs the launch-time biometric challenge when the user
// opted in and the current process has not yet passed one. It reports
// (target, true) when it decided the navigation itself; (TargetNone,
// false) means the gate is open and evaluation continues toward home.
//
// Every unavailable or failed outcome falls back to the login screen. The
// user always holds the MPIN path; biometrics only ever shortcut it.
func (e *Engine) biometricGate(ctx context.Context, phone string) (Target, bool) {
	if !e.creds.BiometricEnabled(ctx) {
		return TargetNone, false
	}
	if e.creds.BiometricSessionVerified(ctx) {
		return TargetNone, false
	}

	if e.probe == nil || !e.probe.HasHardware() || !e.probe.IsEnrolled() {
		if err := e.creds.SetTempPhone(ctx, phone); err != nil {
			logf("stash phone for login: %v", err)
		}
		e.metricInc(MetricBiometricFallback)
		e.metricInc(MetricDecisionLogin)
		e.emitAudit(ctx, "decide", true, phone, TargetLogin, nil, map[string]string{"reason": "biometric_unavailable"})
		return TargetLogin, true
	}

	result, err := e.probe.Authenticate(ctx, e.config.Biometric.Prompt)
	if err != nil || !result.Success {
		if err := e.creds.SetTempPhone(ctx, phone); err != nil {
			logf("stash phone for login: %v", err)
		}
		e.metricInc(MetricBiometricFailure)
		e.metricInc(MetricBiometricFallback)
		e.metricInc(MetricDecisionLogin)
		e.emitAudit(ctx, "decide", true, phone, TargetLogin, err, map[string]string{"reason": "biometric_failed"})
		return TargetLogin, true
	}

	e.metricInc(MetricBiometricSuccess)
	if err := e.creds.MarkBiometricSessionVerified(ctx); err != nil {
		logf("mark biometric session: %v", err)
	}
	return TargetNone, false
}

// loadProfileForHome makes sure a profile is available before routing
// home, fetching from the API when the cache is empty. A fetch failure
// fails open to the login screen rather than landing on a blank home.
func (e *Engine) loadProfileForHome(ctx context.Context, phone, token string) (Target, bool) {
	if _, ok := e.creds.ProfileJSON(ctx); ok {
		return TargetNone, false
	}

	raw, err := e.api.Profile(ctx, token)
	if err != nil {
		if err := e.creds.SetTempPhone(ctx, phone); err != nil {
			logf("stash phone for login: %v", err)
		}
		e.metricInc(MetricDecisionLogin)
		e.emitAudit(ctx, "decide", true, phone, TargetLogin, err, map[string]string{"reason": "profile_unavailable"})
		return TargetLogin, true
	}

	if json.Valid(raw) {
		if err := e.creds.SetProfileJSON(ctx, string(raw)); err != nil {
			logf("cache profile: %v", err)
		}
	}
	return TargetNone, false
}
