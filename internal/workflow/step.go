package workflow

// Step identifies a workflow's internal phase. The label reported by the
// engine is free-form; ParseStep maps the labels the console knows about
// onto a closed enum and collapses everything else to StepUnknown, so new
// engine phases degrade gracefully instead of breaking gating logic.
// Callers that need forward-compatible matching against unknown labels
// (the pack-step fallback rule) match on the raw label, not the enum.
type Step int

const (
	// StepNone means no step has been observed yet. A workflow that has
	// just started reports a status before its first step label.
	StepNone Step = iota
	// StepUnknown means the engine reported a label this console does not
	// recognize.
	StepUnknown

	StepInitializing
	StepAllocatingInventory
	StepMarkingReserved
	StepCreatingPickTasks
	StepWaitingForPicks
	StepConsumingInventory
	StepWaitingForPacks
	StepCreatingShipments
	StepWaitingForShipments
	StepMarkingShipped
	StepUpdatingWaveStatus
	StepReleasingInventory
	StepCompleted
	StepFailed
	StepCancelled
)

var stepLabels = map[string]Step{
	"INITIALIZING":          StepInitializing,
	"ALLOCATING_INVENTORY":  StepAllocatingInventory,
	"MARKING_RESERVED":      StepMarkingReserved,
	"CREATING_PICK_TASKS":   StepCreatingPickTasks,
	"WAITING_FOR_PICKS":     StepWaitingForPicks,
	"CONSUMING_INVENTORY":   StepConsumingInventory,
	"WAITING_FOR_PACKS":     StepWaitingForPacks,
	"CREATING_SHIPMENTS":    StepCreatingShipments,
	"WAITING_FOR_SHIPMENTS": StepWaitingForShipments,
	"MARKING_SHIPPED":       StepMarkingShipped,
	"UPDATING_WAVE_STATUS":  StepUpdatingWaveStatus,
	"RELEASING_INVENTORY":   StepReleasingInventory,
	"COMPLETED":             StepCompleted,
	"FAILED":                StepFailed,
	"CANCELLED":             StepCancelled,
}

var stepNames = func() map[Step]string {
	names := make(map[Step]string, len(stepLabels))
	for label, step := range stepLabels {
		names[step] = label
	}
	return names
}()

// ParseStep maps an engine-reported step label onto the step enum.
// An empty label parses to StepNone; an unrecognized label to StepUnknown.
func ParseStep(label string) Step {
	if label == "" {
		return StepNone
	}
	if step, ok := stepLabels[label]; ok {
		return step
	}
	return StepUnknown
}

// String returns the engine label for the step, or a placeholder for the
// none/unknown variants.
func (s Step) String() string {
	switch s {
	case StepNone:
		return "(none)"
	case StepUnknown:
		return "(unknown)"
	default:
		if name, ok := stepNames[s]; ok {
			return name
		}
		return "(unknown)"
	}
}

// Known reports whether the step is a recognized engine phase.
func (s Step) Known() bool {
	return s != StepNone && s != StepUnknown
}
