package mpinauth

import (
	"context"
	"errors"

	"github.com/subtel/mpinauth/authapi"
	"github.com/subtel/mpinauth/biometric"
	"github.com/subtel/mpinauth/credstore"
	"github.com/subtel/mpinauth/internal/clock"
	"github.com/subtel/mpinauth/vault"
)

// Builder assembles an [Engine]. Obtain one via [New], chain the With
// methods, then call [Builder.Build] exactly once.
type Builder struct {
	cfg       Config
	store     credstore.Store
	api       authapi.Client
	probe     biometric.Probe
	vault     vault.Vault
	clk       clock.Clock
	auditSink AuditSink
	built     bool
}

// New creates a [Builder] preloaded with the default configuration.
func New() *Builder {
	return &Builder{cfg: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithCredentials sets the credential store backing the engine. Required.
func (b *Builder) WithCredentials(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithAuthAPI sets the remote auth API client. Required.
func (b *Builder) WithAuthAPI(client authapi.Client) *Builder {
	b.api = client
	return b
}

// WithBiometric sets the platform biometric probe. Optional; without one
// the decision engine falls back to the login screen.
func (b *Builder) WithBiometric(probe biometric.Probe) *Builder {
	b.probe = probe
	return b
}

// WithVault sets the vault that seals the saved MPIN. Optional; without
// one biometric opt-in is refused.
func (b *Builder) WithVault(v vault.Vault) *Builder {
	b.vault = v
	return b
}

// WithClock replaces the wall clock. Tests inject a fake here.
func (b *Builder) WithClock(clk clock.Clock) *Builder {
	b.clk = clk
	return b
}

// WithAuditSink sets the sink that receives audit events. Effective only
// when [AuditConfig].Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled turns on the in-process counters.
func (b *Builder) WithMetricsEnabled(latencyHistograms bool) *Builder {
	b.cfg.Metrics.Enabled = true
	b.cfg.Metrics.EnableLatencyHistograms = latencyHistograms
	return b
}

// Build validates the configuration and wiring and returns the engine.
// The process-lifetime biometric flag is cleared here: a freshly built
// engine means a cold start, so the next launch must challenge again.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("credential store is required")
	}
	if b.api == nil {
		return nil, errors.New("auth API client is required")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	if b.clk == nil {
		b.clk = clock.System()
	}

	e := &Engine{
		config:  b.cfg,
		creds:   credstore.NewRepository(b.store),
		api:     b.api,
		probe:   b.probe,
		vault:   b.vault,
		clock:   b.clk,
		audit:   newAuditDispatcher(b.cfg.Audit, b.auditSink),
		metrics: NewMetrics(b.cfg.Metrics),
	}

	if err := e.creds.ClearBiometricSession(context.Background()); err != nil {
		logf("clear biometric session at start: %v", err)
	}

	return e, nil
}
