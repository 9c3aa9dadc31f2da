// Package pipeline provides the lead funnel bounded context: the five-stage
// pipeline state machine, the kanban board projection, and stage transitions.
package pipeline

const (
	StageToContact   = "to_contact"
	StageContacted   = "contacted"
	StageNegotiating = "negotiating"
	StageWon         = "won"
	StageLost        = "lost"
)

var knownStages = map[string]struct{}{
	StageToContact:   {},
	StageContacted:   {},
	StageNegotiating: {},
	StageWon:         {},
	StageLost:        {},
}

// Stages returns the five funnel stages in board order.
func Stages() []string {
	return []string{StageToContact, StageContacted, StageNegotiating, StageWon, StageLost}
}

// IsKnownStage reports whether stage is one of the five funnel stages.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[stage]
	return ok
}

// NormalizeStage coerces an unrecognized or empty stored stage to the initial
// stage. A lead always occupies exactly one stage; bad data lands in
// to_contact instead of failing.
func NormalizeStage(stage string) string {
	if IsKnownStage(stage) {
		return stage
	}
	return StageToContact
}
