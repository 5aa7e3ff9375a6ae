// Package workflow models the observable state of externally-orchestrated
// fulfillment workflows: status vocabularies per domain, terminal sets,
// workflow step labels, and the pure action-gating predicates the console
// uses to decide which operator controls to render.
//
// Nothing in this package performs I/O. Status snapshots are produced by the
// pollers in internal/poller and consumed here and by the render layer.
package workflow

// Status is an enum-like workflow status string. Each domain (wave, order)
// has its own vocabulary; unknown values are carried through untouched so a
// backend rollout of a new status never breaks the console.
type Status string

// Wave statuses.
const (
	WaveCreated    Status = "CREATED"
	WaveReleased   Status = "RELEASED"
	WaveInProgress Status = "IN_PROGRESS"
	WavePicking    Status = "PICKING"
	WavePacking    Status = "PACKING"
	WaveShipping   Status = "SHIPPING"
	WaveCompleted  Status = "COMPLETED"
	WaveCancelled  Status = "CANCELLED"
	WaveFailed     Status = "FAILED"
)

// Order statuses.
const (
	OrderCreated      Status = "CREATED"
	OrderAwaitingWave Status = "AWAITING_WAVE"
	OrderReserved     Status = "RESERVED"
	OrderPicking      Status = "PICKING"
	OrderPacking      Status = "PACKING"
	OrderShipped      Status = "SHIPPED"
	OrderDelivered    Status = "DELIVERED"
	OrderCancelled    Status = "CANCELLED"
	OrderFailed       Status = "FAILED"
)

// TerminalSet is a per-domain set of statuses after which no further signals
// are meaningful. Once a polled status lands in the set, polling stops and
// all action controls are hidden.
type TerminalSet map[Status]bool

// NewTerminalSet builds a TerminalSet from a list of statuses.
func NewTerminalSet(statuses ...Status) TerminalSet {
	set := make(TerminalSet, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// Contains reports whether status is terminal for this set.
func (t TerminalSet) Contains(status Status) bool {
	return t[status]
}

// WaveTerminal is the terminal set for wave workflows.
var WaveTerminal = NewTerminalSet(WaveCompleted, WaveCancelled, WaveFailed)

// OrderTerminal is the terminal set for order workflows.
var OrderTerminal = NewTerminalSet(OrderShipped, OrderDelivered, OrderCancelled, OrderFailed)

// waveActive is the set of post-release, pre-terminal wave statuses during
// which pick/pack signals may apply.
var waveActive = NewTerminalSet(WaveReleased, WaveInProgress, WavePicking, WavePacking)

// WaveActive reports whether the wave is in an active (post-release,
// pre-terminal) status.
func WaveActive(status Status) bool {
	return waveActive.Contains(status)
}

// WorkflowStatus is a point-in-time snapshot of a running workflow. It is
// re-fetched on every poll tick and never cached beyond one interval;
// CurrentStep and BlockingReason are advisory and may lag the engine by up
// to one interval.
type WorkflowStatus struct {
	Status         Status `json:"status"`
	CurrentStep    string `json:"currentStep,omitempty"`
	BlockingReason string `json:"blockingReason,omitempty"`
}

// Step parses the advisory step label into the closed step enum.
func (w WorkflowStatus) Step() Step {
	return ParseStep(w.CurrentStep)
}
