package extract

import (
	"testing"
)

func TestQuotedSpans(t *testing.T) {
	text := []rune(`Он сказал «машинное обучение» и "deep learning", но “neural” тоже.`)
	spans := QuotedSpans(text)

	if len(spans) != 3 {
		t.Fatalf("Expected 3 quoted spans, got %d: %+v", len(spans), spans)
	}

	want := []string{"«машинное обучение»", `"deep learning"`, "“neural”"}
	for i, s := range spans {
		if got := string(text[s.Start:s.End]); got != want[i] {
			t.Errorf("Span %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestQuotedSpans_Unterminated(t *testing.T) {
	if spans := QuotedSpans([]rune("«open but never closed")); len(spans) != 0 {
		t.Errorf("Expected no spans, got %+v", spans)
	}
}

func TestBibliographyStart(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"russian heading", "Основной текст.\nСписок литературы:\n1. Иванов", 16},
		{"english heading", "Body.\n\nReferences\n[1] Smith", 7},
		{"numbered heading", "Body.\n5. Литература\nКнига", 6},
		{"kazakh heading", "Мәтін.\nӘдебиеттер\n1. Автор", 7},
		{"word inside sentence", "Литература по теме обширна.\nДалее", -1},
		{"none", "No bibliography here", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BibliographyStart([]rune(tt.text)); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestExclusions_Covers(t *testing.T) {
	ex := FindExclusions("«цитата» текст\nReferences\nsrc", true, true)
	if len(ex) != 2 {
		t.Fatalf("Expected 2 exclusions, got %d", len(ex))
	}

	if !ex.Covers(1, 3) {
		t.Error("Expected quoted range to be covered")
	}
	if ex.Covers(9, 14) {
		t.Error("Expected plain text to be uncovered")
	}
	if !ex.Covers(16, 20) {
		t.Error("Expected bibliography tail to be covered")
	}

	if got := FindExclusions("«цитата»\nReferences", false, false); len(got) != 0 {
		t.Errorf("Expected no exclusions when disabled, got %d", len(got))
	}
}
