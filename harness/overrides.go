package harness

import (
	"github.com/chaintest/harness/chain"
)

// overrideScope describes how long a caller identity override remains in effect.
type overrideScope uint8

const (
	// scopeSingleCall describes an override consumed by exactly one dispatch.
	scopeSingleCall overrideScope = iota
	// scopePersistent describes an override which remains effective until explicitly stopped.
	scopePersistent
)

// identityOverride describes one entry of the caller identity override stack.
type identityOverride struct {
	// identity describes the caller identity substituted while this override is effective.
	identity chain.Address

	// scope describes whether the override is consumed by the next dispatch or persists until stopped.
	scope overrideScope
}

// IdentityOverrideStack manages scoped substitution of the effective caller identity. It is owned exclusively by
// an ExecutionContext and never shared across test cases.
type IdentityOverrideStack struct {
	// defaultIdentity describes the caller identity used when no override is active.
	defaultIdentity chain.Address

	// overrides describes the active overrides, ordered bottom to top.
	overrides []identityOverride
}

// NewIdentityOverrideStack creates an IdentityOverrideStack with the provided default caller identity.
func NewIdentityOverrideStack(defaultIdentity chain.Address) *IdentityOverrideStack {
	return &IdentityOverrideStack{
		defaultIdentity: defaultIdentity,
		overrides:       make([]identityOverride, 0),
	}
}

// EffectiveCaller returns the caller identity currently in effect: the top of the override stack, or the default
// identity if no override is active.
func (s *IdentityOverrideStack) EffectiveCaller() chain.Address {
	if len(s.overrides) > 0 {
		return s.overrides[len(s.overrides)-1].identity
	}
	return s.defaultIdentity
}

// PushSingleCall pushes an override consumed by exactly the next dispatch.
func (s *IdentityOverrideStack) PushSingleCall(identity chain.Address) {
	s.overrides = append(s.overrides, identityOverride{identity: identity, scope: scopeSingleCall})
}

// PushPersistent pushes an override which remains effective until StopPersistent is called. Returns
// ErrOverrideConflict if another persistent override is already active: allowing two would make it ambiguous which
// identity "all subsequent calls" refers to.
func (s *IdentityOverrideStack) PushPersistent(identity chain.Address) error {
	if s.hasPersistent() {
		return ErrOverrideConflict
	}
	s.overrides = append(s.overrides, identityOverride{identity: identity, scope: scopePersistent})
	return nil
}

// StopPersistent removes the active persistent override. Returns ErrNoActiveOverride if none is active.
func (s *IdentityOverrideStack) StopPersistent() error {
	for i := len(s.overrides) - 1; i >= 0; i-- {
		if s.overrides[i].scope == scopePersistent {
			s.overrides = append(s.overrides[:i], s.overrides[i+1:]...)
			return nil
		}
	}
	return ErrNoActiveOverride
}

// ConsumeAfterDispatch removes every single-call override from the stack, wherever it sits. Called by the
// ExecutionContext after every dispatch, including read-only ones: a single-call override is spent by exactly one
// dispatch even when a persistent override pushed afterwards shadowed it, so it can never resurface as the
// effective caller later.
func (s *IdentityOverrideStack) ConsumeAfterDispatch() {
	remaining := s.overrides[:0]
	for _, override := range s.overrides {
		if override.scope != scopeSingleCall {
			remaining = append(remaining, override)
		}
	}
	s.overrides = remaining
}

// hasPersistent returns whether a persistent override exists anywhere in the stack.
func (s *IdentityOverrideStack) hasPersistent() bool {
	for _, override := range s.overrides {
		if override.scope == scopePersistent {
			return true
		}
	}
	return false
}
