package entity

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultVocabulary(), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}
	return e
}

// TestExtract tests the core extraction behavior
func TestExtract(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("EmptyInput", func(t *testing.T) {
		spans := e.Extract("")
		if len(spans) != 0 {
			t.Errorf("Empty input should yield no spans, got %d", len(spans))
		}
	})

	t.Run("NoEntities", func(t *testing.T) {
		spans := e.Extract("the quick brown fox jumps over the lazy dog")
		if len(spans) != 0 {
			t.Errorf("Text without medical terms should yield no spans, got %d", len(spans))
		}
	})

	t.Run("SpanTextMatchesSource", func(t *testing.T) {
		text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
		for _, s := range e.Extract(text) {
			if s.Text != text[s.Start:s.End] {
				t.Errorf("Span text %q != source[%d:%d] = %q", s.Text, s.Start, s.End, text[s.Start:s.End])
			}
		}
	})

	t.Run("NonOverlappingAndSorted", func(t *testing.T) {
		text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
		spans := e.Extract(text)
		for i := 1; i < len(spans); i++ {
			if spans[i].Start < spans[i-1].Start {
				t.Errorf("Spans not sorted by start: %d before %d", spans[i-1].Start, spans[i].Start)
			}
			if spans[i].Start < spans[i-1].End {
				t.Errorf("Spans overlap: [%d,%d) and [%d,%d)",
					spans[i-1].Start, spans[i-1].End, spans[i].Start, spans[i].End)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
		first := e.Extract(text)
		second := e.Extract(text)
		if !reflect.DeepEqual(first, second) {
			t.Error("Repeated extraction of the same text produced different results")
		}
	})

	t.Run("ConfidenceFixed", func(t *testing.T) {
		for _, s := range e.Extract("aspirin for headache") {
			if s.Confidence != 1.0 {
				t.Errorf("Confidence should be 1.0, got %f", s.Confidence)
			}
		}
	})
}

// TestLongestMatchWins tests overlap resolution preferring the most
// specific match
func TestLongestMatchWins(t *testing.T) {
	e := newTestExtractor(t)

	spans := e.Extract("heart attack")
	if len(spans) != 1 {
		t.Fatalf("Expected exactly 1 span for 'heart attack', got %d: %+v", len(spans), spans)
	}
	if spans[0].Category != CategoryDisease {
		t.Errorf("Expected DISEASE, got %s", spans[0].Category)
	}
	if spans[0].Text != "heart attack" {
		t.Errorf("Expected full phrase 'heart attack', got %q", spans[0].Text)
	}
}

// TestCaseInsensitivity tests that matching ignores letter case
func TestCaseInsensitivity(t *testing.T) {
	e := newTestExtractor(t)

	for _, input := range []string{"ASPIRIN", "Aspirin", "aspirin"} {
		spans := e.Extract(input)
		if len(spans) != 1 {
			t.Fatalf("Expected 1 span for %q, got %d", input, len(spans))
		}
		if spans[0].Category != CategoryMedication {
			t.Errorf("Expected MEDICATION for %q, got %s", input, spans[0].Category)
		}
		if spans[0].Text != input {
			t.Errorf("Matched text should preserve source case: got %q for input %q", spans[0].Text, input)
		}
	}
}

// TestWordBoundaries tests that partial words never match
func TestWordBoundaries(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("NoPartialWordMatch", func(t *testing.T) {
		for _, s := range e.Extract("diabetic") {
			if s.Text == "diabetes" {
				t.Errorf("'diabetic' must not match the term 'diabetes': %+v", s)
			}
		}
	})

	t.Run("DosageBoundaries", func(t *testing.T) {
		spans := e.Extract("take 500 mg daily")
		var dosage *Span
		for i := range spans {
			if spans[i].Category == CategoryDosage {
				dosage = &spans[i]
			}
		}
		if dosage == nil {
			t.Fatal("Expected a DOSAGE span in 'take 500 mg daily'")
		}
		if dosage.Text != "500 mg" {
			t.Errorf("Expected dosage span '500 mg', got %q", dosage.Text)
		}
	})
}

// TestEndToEnd tests the full example sentence from the clinical notes
func TestEndToEnd(t *testing.T) {
	e := newTestExtractor(t)

	text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
	spans := e.Extract(text)

	want := []struct {
		text     string
		category Category
	}{
		{"diabetes", CategoryDisease},
		{"10 mg", CategoryDosage},
		{"aspirin", CategoryMedication},
		{"twice a day", CategoryDosage},
		{"headache", CategorySymptom},
	}

	if len(spans) != len(want) {
		t.Fatalf("Expected %d spans, got %d: %+v", len(want), len(spans), spans)
	}
	for i, w := range want {
		if spans[i].Text != w.text {
			t.Errorf("Span %d: expected text %q, got %q", i, w.text, spans[i].Text)
		}
		if spans[i].Category != w.category {
			t.Errorf("Span %d: expected category %s, got %s", i, w.category, spans[i].Category)
		}
	}
}

// TestAnnotate tests the inline annotation view
func TestAnnotate(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("EmptyInput", func(t *testing.T) {
		if got := e.Annotate(""); got != "" {
			t.Errorf("Annotate of empty text should be empty, got %q", got)
		}
	})

	t.Run("NoEntities", func(t *testing.T) {
		text := "nothing clinical here"
		if got := e.Annotate(text); got != text {
			t.Errorf("Text without entities should come back unchanged, got %q", got)
		}
	})

	t.Run("WrapsEntities", func(t *testing.T) {
		got := e.Annotate("takes aspirin daily")
		want := "takes [aspirin|MEDICATION] daily"
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
		annotated := e.Annotate(text)

		// Stripping the wrapper syntax must reconstruct the original.
		restored := annotated
		for _, c := range Categories() {
			restored = strings.ReplaceAll(restored, "|"+string(c)+"]", "")
		}
		restored = strings.ReplaceAll(restored, "[", "")
		if restored != text {
			t.Errorf("Round trip failed:\n  original:  %q\n  restored:  %q\n  annotated: %q", text, restored, annotated)
		}
	})
}

// TestSummarize tests the category-grouped summary view
func TestSummarize(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("EmptyInput", func(t *testing.T) {
		if s := e.Summarize(""); len(s) != 0 {
			t.Errorf("Summary of empty text should be empty, got %+v", s)
		}
	})

	t.Run("Deduplication", func(t *testing.T) {
		s := e.Summarize("aspirin in the morning and aspirin at night")
		meds := s.Terms(CategoryMedication)
		if len(meds) != 1 || meds[0] != "aspirin" {
			t.Errorf("Expected MEDICATION summary [aspirin], got %v", meds)
		}
	})

	t.Run("CaseSensitiveDistinct", func(t *testing.T) {
		s := e.Summarize("Aspirin then aspirin")
		meds := s.Terms(CategoryMedication)
		if len(meds) != 2 {
			t.Errorf("Distinct casings should stay distinct, got %v", meds)
		}
	})

	t.Run("EmptyCategoriesAbsent", func(t *testing.T) {
		s := e.Summarize("aspirin")
		if s.Terms(CategoryDisease) != nil {
			t.Error("DISEASE should be absent from the summary")
		}
		if len(s) != 1 {
			t.Errorf("Expected a single category group, got %d", len(s))
		}
	})

	t.Run("FirstSeenOrder", func(t *testing.T) {
		s := e.Summarize("headache treated with aspirin")
		if len(s) != 2 {
			t.Fatalf("Expected 2 category groups, got %d", len(s))
		}
		if s[0].Category != CategorySymptom || s[1].Category != CategoryMedication {
			t.Errorf("Expected SYMPTOM before MEDICATION, got %s then %s", s[0].Category, s[1].Category)
		}
	})
}

// TestCustomVocabulary tests construction with a caller-supplied vocabulary
func TestCustomVocabulary(t *testing.T) {
	t.Run("EqualLengthTieBreak", func(t *testing.T) {
		// Same term in two categories: the earlier category in the
		// canonical order wins the equal-start, equal-length tie.
		vocab := Vocabulary{
			Terms: map[Category][]string{
				CategoryDisease: {"angina"},
				CategorySymptom: {"angina"},
			},
		}
		e, err := New(vocab, zap.NewNop())
		if err != nil {
			t.Fatalf("Failed to create extractor: %v", err)
		}
		spans := e.Extract("angina")
		if len(spans) != 1 {
			t.Fatalf("Expected 1 span, got %d", len(spans))
		}
		if spans[0].Category != CategoryDisease {
			t.Errorf("Tie-break should prefer DISEASE, got %s", spans[0].Category)
		}
	})

	t.Run("MalformedDosagePattern", func(t *testing.T) {
		vocab := Vocabulary{
			DosagePatterns: []string{`\b\d+(\s*mg\b`},
		}
		if _, err := New(vocab, zap.NewNop()); err == nil {
			t.Error("Malformed dosage pattern should fail construction")
		}
	})

	t.Run("WithExtra", func(t *testing.T) {
		vocab := DefaultVocabulary().WithExtra(
			map[Category][]string{CategoryDisease: {"zebrafish syndrome"}},
			nil,
		)
		e, err := New(vocab, zap.NewNop())
		if err != nil {
			t.Fatalf("Failed to create extractor: %v", err)
		}
		spans := e.Extract("diagnosed zebrafish syndrome today")
		if len(spans) != 1 || spans[0].Category != CategoryDisease {
			t.Errorf("Extra term should match as DISEASE, got %+v", spans)
		}
	})
}

// TestConcurrentExtract tests that one extractor is safe for parallel use
func TestConcurrentExtract(t *testing.T) {
	e := newTestExtractor(t)
	text := "Patient has diabetes and takes 10 mg aspirin twice a day for headache"
	want := e.Extract(text)

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 50; j++ {
				if got := e.Extract(text); !reflect.DeepEqual(got, want) {
					t.Errorf("Concurrent extraction diverged: %+v", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
