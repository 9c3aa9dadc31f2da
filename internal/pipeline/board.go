package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a captured business contact moving through the funnel. Leads are
// created by the capture collaborator and deleted by an explicit admin
// action; this core only ever writes the stage field.
type Lead struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Rating      float64   `json:"rating"`
	HasWhatsApp bool      `json:"hasWhatsapp"`
	Phone       string    `json:"phone"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Board is the kanban projection: one column per stage.
type Board map[string][]Lead

// BuildBoard recomputes the board as a pure function of the lead list.
// Every stage is present as a key (possibly with an empty column), input
// order is preserved within a column, and unrecognized stored stages land in
// the to_contact column.
func BuildBoard(leads []Lead) Board {
	board := make(Board, len(knownStages))
	for _, stage := range Stages() {
		board[stage] = []Lead{}
	}

	for _, lead := range leads {
		stage := NormalizeStage(lead.Stage)
		lead.Stage = stage
		board[stage] = append(board[stage], lead)
	}

	return board
}
