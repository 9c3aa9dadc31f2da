package pipeline

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildBoardHasAllColumns(t *testing.T) {
	board := BuildBoard(nil)
	if len(board) != 5 {
		t.Fatalf("got %d columns, want 5", len(board))
	}
	for _, stage := range Stages() {
		col, ok := board[stage]
		if !ok {
			t.Errorf("missing column %q", stage)
		}
		if col == nil {
			t.Errorf("column %q is nil, want empty slice", stage)
		}
	}
}

func TestBuildBoardPlacesEachLeadInExactlyOneColumn(t *testing.T) {
	leads := []Lead{
		{ID: uuid.New(), Name: "a", Stage: StageContacted},
		{ID: uuid.New(), Name: "b", Stage: StageWon},
		{ID: uuid.New(), Name: "c", Stage: ""},          // defaults to to_contact
		{ID: uuid.New(), Name: "d", Stage: "abandoned"}, // unrecognized defaults too
	}

	board := BuildBoard(leads)

	total := 0
	for _, col := range board {
		total += len(col)
	}
	if total != len(leads) {
		t.Errorf("board holds %d leads, want %d", total, len(leads))
	}

	if len(board[StageToContact]) != 2 {
		t.Errorf("to_contact has %d leads, want 2", len(board[StageToContact]))
	}
	for _, lead := range board[StageToContact] {
		if lead.Stage != StageToContact {
			t.Errorf("lead %q carries stage %q inside to_contact column", lead.Name, lead.Stage)
		}
	}
}

func TestBuildBoardPreservesInputOrder(t *testing.T) {
	leads := []Lead{
		{ID: uuid.New(), Name: "first", Stage: StageContacted},
		{ID: uuid.New(), Name: "second", Stage: StageContacted},
	}

	board := BuildBoard(leads)
	col := board[StageContacted]
	if col[0].Name != "first" || col[1].Name != "second" {
		t.Errorf("column order = %q, %q", col[0].Name, col[1].Name)
	}
}
