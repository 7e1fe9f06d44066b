// Package mpinauth is the authentication and session-lifecycle core of a
// mobile subscriber portal: phone verification, OTP, MPIN login/setup/reset,
// biometric unlock, brute-force lockout, and background session expiry.
//
// The package owns decisions, not screens. [Engine.Decide] inspects the
// persisted credential record and returns exactly one navigation [Target];
// the flow controllers ([PinEntry], [OTPEntry], [PinSetup]) manage entry
// state and talk to the remote auth API; the caller renders whatever the
// core tells it to.
//
// # Architecture boundaries
//
// mpinauth is the public surface. It exposes [Engine], [Builder], [Config],
// the flow controllers, and value types. Collaborators are injected through
// the builder: a credential store ([credstore.Store]), the remote auth API
// ([authapi.Client]), a biometric probe ([biometric.Probe]), and an optional
// secure vault ([vault.Vault]) for the biometric-replay credential.
//
// # What this package must NOT do
//
//   - Render UI, own navigation, or block on user interaction.
//   - Retry remote calls on its own; failures surface once and roll local
//     state back so the user can retry.
//   - Route to home on any unexpected failure. The fail-open target is
//     always MPIN login.
//
// # Concurrency contract
//
// The portal drives the core from a single UI dispatch queue, but every
// entry point is guarded: decisions cannot reenter while one is in flight,
// MPIN submission is strictly serialized, and countdowns are owned,
// cancellable tickers rather than self-rescheduling timers.
package mpinauth
