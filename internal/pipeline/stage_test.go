package pipeline

import "testing"

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"to_contact", StageToContact},
		{"contacted", StageContacted},
		{"negotiating", StageNegotiating},
		{"won", StageWon},
		{"lost", StageLost},
		{"", StageToContact},
		{"archived", StageToContact},
		{"WON", StageToContact},
	}

	for _, tt := range tests {
		if got := NormalizeStage(tt.in); got != tt.want {
			t.Errorf("NormalizeStage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStagesOrder(t *testing.T) {
	want := []string{"to_contact", "contacted", "negotiating", "won", "lost"}
	got := Stages()
	if len(got) != len(want) {
		t.Fatalf("got %d stages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
