// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Command
		wantOK bool
	}{
		{"create", `poll create "Best color?"`, Command{Kind: Create, Text: "Best color?"}, true},
		{"create mixed case", `POLL Create "Q"`, Command{Kind: Create, Text: "Q"}, true},
		{"create inside sentence", `hey bot poll create "Lunch?" please`, Command{Kind: Create, Text: "Lunch?"}, true},
		{"create empty quotes", `poll create ""`, Command{}, false},
		{"add option", `poll add option "Red"`, Command{Kind: AddOption, Text: "Red"}, true},
		{"add option with quotes inside", `poll add option "say "hi""`, Command{Kind: AddOption, Text: `say "hi"`}, true},
		{"preview", "poll preview", Command{Kind: Preview}, true},
		{"done", "poll done", Command{Kind: Done}, true},
		{"random", "poll random", Command{Kind: Random}, true},
		{"list", "bot poll list", Command{Kind: List}, true},
		{"show", "poll show 12", Command{Kind: Show, PollID: 12}, true},
		{"show without id", "poll show", Command{}, false},
		{"results", "poll results 3", Command{Kind: Results, PollID: 3}, true},
		{"vote", "poll vote 1 a", Command{Kind: Vote, PollID: 1, Label: "a"}, true},
		{"vote uppercase", "poll vote 2 B", Command{Kind: Vote, PollID: 2, Label: "B"}, true},
		{"vote missing letter", "poll vote 2", Command{}, false},
		{"flushall", "poll flushall", Command{Kind: FlushAll}, true},
		{"unrelated", "good morning", Command{}, false},
		{"empty", "", Command{}, false},
		{"id overflow", "poll show 99999999999999999999999", Command{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPrivateOnly(t *testing.T) {
	public := map[Kind]bool{List: true, Show: true, Results: true}
	for kind := Create; kind <= FlushAll; kind++ {
		cmd := Command{Kind: kind}
		if got, want := cmd.PrivateOnly(), !public[kind]; got != want {
			t.Errorf("%s: PrivateOnly() = %v, want %v", kind, got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := AddOption.String(); got != "add_option" {
		t.Errorf("Expected add_option, got %q", got)
	}
	if got := Kind(0).String(); got != "unknown" {
		t.Errorf("Expected unknown, got %q", got)
	}
}
