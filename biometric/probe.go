// Package biometric defines the capability probe and one-shot challenge
// surface the platform provides. The engine only ever asks three
// questions: is there hardware, is anything enrolled, and did the user
// pass a single challenge.
package biometric

import "context"

// Result is the outcome of one biometric challenge.
type Result struct {
	Success bool
}

// Probe is the platform biometric surface.
type Probe interface {
	HasHardware() bool
	IsEnrolled() bool
	Authenticate(ctx context.Context, prompt string) (Result, error)
}

// StaticProbe is a scriptable Probe for tests.
type StaticProbe struct {
	Hardware bool
	Enrolled bool
	Succeed  bool
	Err      error

	// Challenges counts Authenticate invocations.
	Challenges int
}

// HasHardware describes the hashardware operation and its observable behavior.
func (p *StaticProbe) HasHardware() bool { return p.Hardware }

// IsEnrolled describes the isenrolled operation and its observable behavior.
func (p *StaticProbe) IsEnrolled() bool { return p.Enrolled }

// Authenticate describes the authenticate operation and its observable behavior.
func (p *StaticProbe) Authenticate(_ context.Context, _ string) (Result, error) {
	p.Challenges++
	if p.Err != nil {
		return Result{}, p.Err
	}
	return Result{Success: p.Succeed}, nil
}
