// Package hooks defines the extension points of the token and logout
// pipelines. Every stage builds a context, hands it to the host-supplied
// Provider, then classifies the context into one of four outcomes. The
// classification is total: a context always lands in exactly one outcome.
package hooks

import "github.com/legit-games/oidc-core/errors"

// Action is the classified outcome of a hook dispatch.
type Action int

const (
	// ActionDefault runs the stage's built-in behavior.
	ActionDefault Action = iota
	// ActionHandled returns the hook-supplied result and stops the pipeline.
	ActionHandled
	// ActionSkipped abandons the pipeline with no result, letting the host
	// fall through to its next handler.
	ActionSkipped
	// ActionRejected short-circuits with a hook-originated error.
	ActionRejected
)

// Outcome is the mutable flag set embedded in every hook context.
type Outcome struct {
	action    Action
	rejection *errors.Rejection
}

// HandleResponse marks the context handled; the stage returns the
// hook-supplied result immediately.
func (o *Outcome) HandleResponse() { o.action = ActionHandled }

// Skip abandons the pipeline with no result.
func (o *Outcome) Skip() { o.action = ActionSkipped }

// Reject records a hook-originated rejection surfaced verbatim on the wire.
func (o *Outcome) Reject(err, description, uri string) {
	o.action = ActionRejected
	o.rejection = errors.Reject(err, description, uri)
}

// Rejection returns the recorded rejection, nil unless rejected.
func (o *Outcome) Rejection() *errors.Rejection { return o.rejection }

// Action classifies the context. Contexts with extra handled triggers
// (issuance) shadow this with their own classification.
func (o *Outcome) Action() Action { return o.action }
