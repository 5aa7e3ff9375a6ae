package workflow

import (
	"fmt"

	"github.com/gobwas/glob"
)

// DefaultPackStepPattern is the fallback pattern for pack-related steps.
// The engine grows new pack phases over time; any step label matching this
// pattern keeps the packs action visible without a console redeploy.
const DefaultPackStepPattern = "*PACK*"

// GateOptions configures a Gate.
type GateOptions struct {
	// OptimisticWhenStepless controls the picks action when no step has
	// been observed yet. The historical behavior is to show the action
	// (absence of data treated as "safe"); call sites that prefer to wait
	// for the first step observation can turn this off.
	OptimisticWhenStepless bool

	// PackStepPattern is a glob matched against unrecognized step labels
	// to decide whether the packs action stays visible. Empty means
	// DefaultPackStepPattern.
	PackStepPattern string
}

// Gate computes which operator actions are legal for a given workflow
// snapshot. All predicates are pure functions of (status, step): no network
// access, no mutable state, deterministic for identical inputs.
type Gate struct {
	optimisticStepless bool
	packPattern        glob.Glob
}

// NewGate creates a Gate from options. It fails only if the pack-step
// pattern does not compile.
func NewGate(opts GateOptions) (*Gate, error) {
	pattern := opts.PackStepPattern
	if pattern == "" {
		pattern = DefaultPackStepPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pack step pattern %q: %w", pattern, err)
	}
	return &Gate{
		optimisticStepless: opts.OptimisticWhenStepless,
		packPattern:        g,
	}, nil
}

// DefaultGate returns a Gate with the historical defaults: optimistic
// stepless picks and the "*PACK*" fallback.
func DefaultGate() *Gate {
	g, err := NewGate(GateOptions{OptimisticWhenStepless: true})
	if err != nil {
		// DefaultPackStepPattern always compiles.
		panic(err)
	}
	return g
}

// CanReleaseWave reports whether the wave can be released for execution.
func (g *Gate) CanReleaseWave(status Status) bool {
	return status == WaveCreated
}

// CanSignalPicks reports whether the picks-complete signal applies. The wave
// must be active, and the workflow must either be in a pick phase or not yet
// have reported a step (subject to the optimistic-stepless option).
func (g *Gate) CanSignalPicks(status Status, stepLabel string) bool {
	if !WaveActive(status) {
		return false
	}
	step := ParseStep(stepLabel)
	if step == StepNone {
		return g.optimisticStepless
	}
	return step == StepWaitingForPicks || step == StepCreatingPickTasks
}

// CanSignalPacks reports whether the packs-complete signal applies. Beyond
// the two known pack phases, any step label matching the pack pattern keeps
// the action visible so new engine phases don't hide it.
func (g *Gate) CanSignalPacks(status Status, stepLabel string) bool {
	if !WaveActive(status) {
		return false
	}
	switch ParseStep(stepLabel) {
	case StepWaitingForPacks, StepConsumingInventory:
		return true
	case StepNone:
		return false
	}
	return g.packPattern.Match(stepLabel)
}

// CanCancelWave reports whether the wave can still be cancelled.
// Failed waves remain cancellable so operators can release reserved
// inventory.
func (g *Gate) CanCancelWave(status Status) bool {
	return status != WaveCompleted && status != WaveCancelled
}

// CanCancelOrder reports whether the order can still be cancelled.
func (g *Gate) CanCancelOrder(status Status) bool {
	return !OrderTerminal.Contains(status)
}

// ShowShipmentsPanel reports whether the wave is in its shipping phase and
// the shipments panel should render.
func (g *Gate) ShowShipmentsPanel(stepLabel string) bool {
	switch ParseStep(stepLabel) {
	case StepWaitingForShipments, StepCreatingShipments, StepMarkingShipped, StepCompleted:
		return true
	}
	return false
}

// WaveActions is the full set of gate decisions for one wave snapshot,
// computed in one place so the render layer can't drift out of sync with
// the individual predicates.
type WaveActions struct {
	Release        bool
	SignalPicks    bool
	SignalPacks    bool
	Cancel         bool
	ShipmentsPanel bool
}

// WaveActions evaluates every wave predicate against a snapshot. Terminal
// statuses hide every action regardless of step.
func (g *Gate) WaveActions(snapshot WorkflowStatus) WaveActions {
	if WaveTerminal.Contains(snapshot.Status) {
		return WaveActions{ShipmentsPanel: g.ShowShipmentsPanel(snapshot.CurrentStep)}
	}
	return WaveActions{
		Release:        g.CanReleaseWave(snapshot.Status),
		SignalPicks:    g.CanSignalPicks(snapshot.Status, snapshot.CurrentStep),
		SignalPacks:    g.CanSignalPacks(snapshot.Status, snapshot.CurrentStep),
		Cancel:         g.CanCancelWave(snapshot.Status),
		ShipmentsPanel: g.ShowShipmentsPanel(snapshot.CurrentStep),
	}
}
