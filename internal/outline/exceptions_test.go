package outline

import (
	"strings"
	"testing"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

func TestParseExceptions(t *testing.T) {
	input := strings.Join([]string{
		"# numbering corrections observed in the 2nd printing",
		"",
		"3.2 = 3.3",
		"24.1.6 External Parasites = 24.1.7",
		"not a correction line",
		"= 5.1",
	}, "\n")

	exc, err := ParseExceptions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exc) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(exc), exc)
	}
	if exc["3.2"] != "3.3" {
		t.Fatalf("exc[3.2] = %q", exc["3.2"])
	}
	if exc["24.1.6"] != "24.1.7" {
		t.Fatalf("exc[24.1.6] = %q", exc["24.1.6"])
	}
}

func TestLoadExceptionsMissingFile(t *testing.T) {
	exc, err := LoadExceptions("no/such/file.txt")
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if len(exc) != 0 {
		t.Fatalf("got %d entries from a missing file", len(exc))
	}
}

func TestExceptionsApply(t *testing.T) {
	exc := Exceptions{
		"3.2":    "3.3",
		"24.1.6": "24.1.7",
		"5.1":    "not-a-numbering",
	}

	tests := []struct {
		name string
		in   booktree.Key
		want booktree.Key
	}{
		{
			"section corrected",
			booktree.Key{Chapter: 3, Section: 2, Subsection: booktree.NoSubsection},
			booktree.Key{Chapter: 3, Section: 3, Subsection: booktree.NoSubsection},
		},
		{
			"subsection corrected",
			booktree.Key{Chapter: 24, Section: 1, Subsection: 6},
			booktree.Key{Chapter: 24, Section: 1, Subsection: 7},
		},
		{
			"no entry",
			booktree.Key{Chapter: 9, Section: 9, Subsection: booktree.NoSubsection},
			booktree.Key{Chapter: 9, Section: 9, Subsection: booktree.NoSubsection},
		},
		{
			"malformed replacement kept as-is",
			booktree.Key{Chapter: 5, Section: 1, Subsection: booktree.NoSubsection},
			booktree.Key{Chapter: 5, Section: 1, Subsection: booktree.NoSubsection},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exc.Apply(tt.in); got != tt.want {
				t.Fatalf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
