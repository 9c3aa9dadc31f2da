package phone

import "testing"

func TestNormalizeJID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"provider jid", "5541999998888@s.whatsapp.net", "5541999998888"},
		{"bare digits", "5541999998888", "5541999998888"},
		{"punctuated", "+55 (41) 99999-8888", "5541999998888"},
		{"suffix only", "@s.whatsapp.net", ""},
		{"empty", "", ""},
		{"garbage", "not-a-number", ""},
		{"digits after at are dropped", "5541999998888@c.us:123", "5541999998888"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeJID(tt.raw); got != tt.want {
				t.Errorf("NormalizeJID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeJIDEquivalence(t *testing.T) {
	// Differently formatted raw identifiers for the same contact must collapse
	// to the same canonical form.
	forms := []string{
		"5541999998888@s.whatsapp.net",
		"5541999998888@c.us",
		"+55 41 99999-8888",
		"5541999998888",
	}

	want := NormalizeJID(forms[0])
	for _, f := range forms[1:] {
		if got := NormalizeJID(f); got != want {
			t.Errorf("NormalizeJID(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestFormatDisplayFallback(t *testing.T) {
	// Unparseable digits are returned as-is.
	if got := FormatDisplay("12"); got != "12" {
		t.Errorf("FormatDisplay(%q) = %q, want input back", "12", got)
	}
	if got := FormatDisplay(""); got != "" {
		t.Errorf("FormatDisplay(\"\") = %q, want empty", got)
	}
}
