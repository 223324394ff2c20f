package heading

import (
	"testing"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

func key(ch, sec, sub int) booktree.Key {
	return booktree.Key{Chapter: ch, Section: sec, Subsection: sub}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKey  booktree.Key
		wantText string
		ok       bool
	}{
		{
			"section",
			"3.1 Feeding Schedules",
			key(3, 1, booktree.NoSubsection),
			"3.1 Feeding Schedules",
			true,
		},
		{
			"chapter heading",
			"3.0 Nutrition",
			key(3, 0, booktree.NoSubsection),
			"3.0 Nutrition",
			true,
		},
		{
			"subsection",
			"3.1.2 Winter Rations",
			key(3, 1, 2),
			"3.1.2 Winter Rations",
			true,
		},
		{
			"chapter dot prefix",
			"Chapter 3.0 Nutrition",
			key(3, 0, booktree.NoSubsection),
			"3.0 Nutrition",
			true,
		},
		{
			"chapter colon prefix",
			"Chapter 3: Nutrition",
			key(3, 0, booktree.NoSubsection),
			"3.0 Nutrition",
			true,
		},
		{
			"leader tail stripped",
			"3.1 Feeding Schedules ...... 41",
			key(3, 1, booktree.NoSubsection),
			"3.1 Feeding Schedules",
			true,
		},
		{
			"embedded after prose",
			"and the kids thrive.3.2 Weaning Practices",
			key(3, 2, booktree.NoSubsection),
			"3.2 Weaning Practices",
			true,
		},
		{
			"ocr leading one",
			"I2.1 Breeding Records",
			key(12, 1, booktree.NoSubsection),
			"12.1 Breeding Records",
			true,
		},
		{
			"ocr section one",
			"3.l Feeding Schedules",
			key(3, 1, booktree.NoSubsection),
			"3.1 Feeding Schedules",
			true,
		},
		{
			"ocr subsection one",
			"3.2.I Creep Feeding",
			key(3, 2, 1),
			"3.2.1 Creep Feeding",
			true,
		},
		{
			"split numbering joined",
			"3. 2 Weaning Practices",
			key(3, 2, booktree.NoSubsection),
			"3.2 Weaning Practices",
			true,
		},
		{"plain prose", "The herd should be checked daily.", booktree.Key{}, "", false},
		{"empty", "", booktree.Key{}, "", false},
		{"bare number no continuation", "3.1", key(3, 1, booktree.NoSubsection), "3.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand, ok := Extract(tt.text, nil)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if cand.Key != tt.wantKey {
				t.Fatalf("key = %v, want %v", cand.Key, tt.wantKey)
			}
			if cand.Text != tt.wantText {
				t.Fatalf("text = %q, want %q", cand.Text, tt.wantText)
			}
		})
	}
}

func TestExtractLookahead(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		lookahead []string
		wantText  string
	}{
		{
			"title on next line",
			"3.1",
			[]string{"Feeding Schedules"},
			"3.1 Feeding Schedules",
		},
		{
			"title split over two lines",
			"3.1",
			[]string{"Feeding", "Schedules"},
			"3.1 Feeding Schedules",
		},
		{
			"stops at next heading",
			"3.1",
			[]string{"Feeding Schedules", "3.2 Weaning Practices"},
			"3.1 Feeding Schedules",
		},
		{
			"stops at blank line",
			"3.1",
			[]string{"Feeding Schedules", "", "stray prose"},
			"3.1 Feeding Schedules",
		},
		{
			"no join for complete heading",
			"3.1 Feeding Schedules",
			[]string{"extra prose that must not be appended"},
			"3.1 Feeding Schedules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand, ok := Extract(tt.text, tt.lookahead)
			if !ok {
				t.Fatal("no candidate extracted")
			}
			if cand.Text != tt.wantText {
				t.Fatalf("text = %q, want %q", cand.Text, tt.wantText)
			}
		})
	}
}
