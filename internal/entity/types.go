package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category identifies the kind of medical entity a span refers to.
// The set is closed; new categories are a code change, not configuration.
type Category string

const (
	CategoryDisease    Category = "DISEASE"
	CategoryMedication Category = "MEDICATION"
	CategorySymptom    Category = "SYMPTOM"
	CategoryBodyPart   Category = "BODY_PART"
	CategoryProcedure  Category = "PROCEDURE"
	CategoryTest       Category = "TEST"
	CategoryDosage     Category = "DOSAGE"
)

// categoryOrder is the canonical enumeration order. It is load-bearing:
// matchers run in this order and it is the final tie-break during overlap
// resolution, so changing it changes which of two equal-length, equal-start
// candidates wins.
var categoryOrder = []Category{
	CategoryDisease,
	CategoryMedication,
	CategorySymptom,
	CategoryBodyPart,
	CategoryProcedure,
	CategoryTest,
	CategoryDosage,
}

var categoryDescriptions = map[Category]string{
	CategoryDisease:    "Medical conditions and diseases",
	CategoryMedication: "Drugs and medications",
	CategorySymptom:    "Signs and symptoms",
	CategoryBodyPart:   "Anatomical parts",
	CategoryProcedure:  "Medical procedures",
	CategoryTest:       "Medical tests and examinations",
	CategoryDosage:     "Medication dosages and frequencies",
}

// Categories returns all categories in their canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %s", s)
	}
	return c, nil
}

// Valid reports whether c is one of the seven known categories.
func (c Category) Valid() bool {
	_, ok := categoryDescriptions[c]
	return ok
}

// Description returns the human-readable description of the category.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

// rank returns the position of c in the canonical order.
func (c Category) rank() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}
	return len(categoryOrder)
}

// Span is a single extracted entity: a half-open byte-offset interval
// [Start, End) over the analyzed text. Text always equals the source
// substring over that interval. Confidence is fixed at 1.0 for every
// current producer but stays in the wire format for future scoring.
type Span struct {
	Text       string   `json:"text"`
	Category   Category `json:"label"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Confidence float64  `json:"confidence"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// overlaps reports whether two spans share at least one byte offset.
func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && s.End > o.Start
}

// CategoryGroup holds the distinct matched strings of one category,
// in first-seen order.
type CategoryGroup struct {
	Category Category `json:"category"`
	Terms    []string `json:"terms"`
}

// Summary groups extracted entities by category. Categories appear in
// first-seen order; a category with no entities is absent entirely.
type Summary []CategoryGroup

// Terms returns the matched strings recorded for a category, or nil.
func (s Summary) Terms(c Category) []string {
	for _, g := range s {
		if g.Category == c {
			return g.Terms
		}
	}
	return nil
}

// MarshalJSON renders the summary as a JSON object keyed by category,
// preserving group order (a plain map would re-sort the keys).
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(g.Category))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		terms, err := json.Marshal(g.Terms)
		if err != nil {
			return nil, err
		}
		buf.Write(terms)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON. Key order
// inside a JSON object is not recoverable portably, so groups come back in
// canonical category order.
func (s *Summary) UnmarshalJSON(data []byte) error {
	raw := make(map[Category][]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Summary, 0, len(raw))
	for _, c := range categoryOrder {
		if terms, ok := raw[c]; ok {
			out = append(out, CategoryGroup{Category: c, Terms: terms})
		}
	}
	*s = out
	return nil
}
