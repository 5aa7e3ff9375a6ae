package poller

import (
	"context"
	"time"

	"github.com/tempest-ops/opsdeck/internal/errors"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// DefaultWorkflowInterval is the refresh period for an open wave or order.
const DefaultWorkflowInterval = 2 * time.Second

// WorkflowOptions configures a workflow status poller.
type WorkflowOptions struct {
	// WorkflowID identifies the workflow being watched. Required; an
	// entity without a workflow handle has nothing to poll.
	WorkflowID string
	// Fetch retrieves the workflow status. Required.
	Fetch func(ctx context.Context, workflowID string) (workflow.WorkflowStatus, error)
	// Terminal is the status set that halts polling. Required.
	Terminal workflow.TerminalSet
	// Interval overrides DefaultWorkflowInterval when positive.
	Interval time.Duration
	// OnUpdate, Clock and Visible are passed through to the underlying
	// poller.
	OnUpdate func(Snapshot[workflow.WorkflowStatus])
	Clock    Clock
	Visible  Visibility
}

// NewWorkflow builds a poller that tracks one workflow's status and stops on
// its own once the status is terminal. Returns ErrNoWorkflowID when the
// workflow handle is missing; callers should not enable polling for entities
// that never entered a workflow.
func NewWorkflow(opts WorkflowOptions) (*Poller[workflow.WorkflowStatus], error) {
	if opts.WorkflowID == "" {
		return nil, errors.ErrNoWorkflowID
	}
	if opts.Fetch == nil {
		return nil, errors.New("poller: Fetch is required")
	}
	if opts.Terminal == nil {
		return nil, errors.New("poller: Terminal set is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultWorkflowInterval
	}

	return New(Options[workflow.WorkflowStatus]{
		Fetch: func(ctx context.Context) (workflow.WorkflowStatus, error) {
			return opts.Fetch(ctx, opts.WorkflowID)
		},
		Interval:   interval,
		ShouldStop: func(ws workflow.WorkflowStatus) bool { return opts.Terminal.Contains(ws.Status) },
		OnUpdate:   opts.OnUpdate,
		Clock:      opts.Clock,
		Visible:    opts.Visible,
	})
}
