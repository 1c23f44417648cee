package entity

import (
	"testing"
)

// TestDefaultVocabulary tests the built-in vocabulary data
func TestDefaultVocabulary(t *testing.T) {
	vocab := DefaultVocabulary()

	t.Run("Valid", func(t *testing.T) {
		if err := vocab.Validate(); err != nil {
			t.Errorf("Default vocabulary should validate: %v", err)
		}
	})

	t.Run("AllLiteralCategoriesPopulated", func(t *testing.T) {
		for _, c := range Categories() {
			if c == CategoryDosage {
				continue
			}
			if len(vocab.Terms[c]) == 0 {
				t.Errorf("Category %s has no terms", c)
			}
		}
	})

	t.Run("DosagePatternsPresent", func(t *testing.T) {
		if len(vocab.DosagePatterns) == 0 {
			t.Error("No dosage patterns")
		}
	})
}

// TestVocabularyValidate tests construction-time vocabulary checks
func TestVocabularyValidate(t *testing.T) {
	t.Run("EmptyTerm", func(t *testing.T) {
		vocab := Vocabulary{Terms: map[Category][]string{
			CategoryDisease: {"diabetes", ""},
		}}
		if err := vocab.Validate(); err == nil {
			t.Error("Empty term should fail validation")
		}
	})

	t.Run("DuplicateWithinCategory", func(t *testing.T) {
		vocab := Vocabulary{Terms: map[Category][]string{
			CategoryDisease: {"diabetes", "Diabetes"},
		}}
		if err := vocab.Validate(); err == nil {
			t.Error("Case-insensitive duplicate within a category should fail validation")
		}
	})

	t.Run("DuplicateAcrossCategories", func(t *testing.T) {
		vocab := Vocabulary{Terms: map[Category][]string{
			CategoryDisease: {"stress test"},
			CategoryTest:    {"stress test"},
		}}
		if err := vocab.Validate(); err != nil {
			t.Errorf("Cross-category duplicates are a modeling choice, not an error: %v", err)
		}
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		vocab := Vocabulary{Terms: map[Category][]string{
			Category("ALLERGY"): {"pollen"},
		}}
		if err := vocab.Validate(); err == nil {
			t.Error("Unknown category should fail validation")
		}
	})

	t.Run("LiteralTermsUnderDosage", func(t *testing.T) {
		vocab := Vocabulary{Terms: map[Category][]string{
			CategoryDosage: {"10 mg"},
		}}
		if err := vocab.Validate(); err == nil {
			t.Error("Literal terms under DOSAGE should fail validation")
		}
	})

	t.Run("EmptyDosagePattern", func(t *testing.T) {
		vocab := Vocabulary{DosagePatterns: []string{""}}
		if err := vocab.Validate(); err == nil {
			t.Error("Empty dosage pattern should fail validation")
		}
	})
}

// TestWithExtra tests vocabulary merging
func TestWithExtra(t *testing.T) {
	base := DefaultVocabulary()
	baseTerms := base.TermCount()
	basePatterns := len(base.DosagePatterns)

	merged := base.WithExtra(
		map[Category][]string{CategorySymptom: {"brain fog"}},
		[]string{`\b\d+\s*puffs?\b`},
	)

	if merged.TermCount() != baseTerms+1 {
		t.Errorf("Expected %d terms after merge, got %d", baseTerms+1, merged.TermCount())
	}
	if len(merged.DosagePatterns) != basePatterns+1 {
		t.Errorf("Expected %d dosage patterns after merge, got %d", basePatterns+1, len(merged.DosagePatterns))
	}
	if base.TermCount() != baseTerms {
		t.Error("WithExtra must not mutate the receiver")
	}
}

// TestCategory tests the closed category enum
func TestCategory(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		c, err := ParseCategory("MEDICATION")
		if err != nil {
			t.Fatalf("Failed to parse MEDICATION: %v", err)
		}
		if c != CategoryMedication {
			t.Errorf("Expected MEDICATION, got %s", c)
		}

		if _, err := ParseCategory("medication"); err == nil {
			t.Error("Lowercase category name should not parse")
		}
	})

	t.Run("Descriptions", func(t *testing.T) {
		for _, c := range Categories() {
			if c.Description() == "" {
				t.Errorf("Category %s has no description", c)
			}
		}
	})

	t.Run("CanonicalOrder", func(t *testing.T) {
		cats := Categories()
		if len(cats) != 7 {
			t.Fatalf("Expected 7 categories, got %d", len(cats))
		}
		if cats[0] != CategoryDisease || cats[len(cats)-1] != CategoryDosage {
			t.Errorf("Unexpected canonical order: %v", cats)
		}
	})
}

// TestSummaryJSON tests ordered summary serialization
func TestSummaryJSON(t *testing.T) {
	s := Summary{
		{Category: CategorySymptom, Terms: []string{"headache"}},
		{Category: CategoryMedication, Terms: []string{"aspirin"}},
	}

	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("Failed to marshal summary: %v", err)
	}

	want := `{"SYMPTOM":["headache"],"MEDICATION":["aspirin"]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, string(data))
	}

	var back Summary
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("Failed to unmarshal summary: %v", err)
	}
	if got := back.Terms(CategorySymptom); len(got) != 1 || got[0] != "headache" {
		t.Errorf("Round trip lost SYMPTOM terms: %v", got)
	}
}
