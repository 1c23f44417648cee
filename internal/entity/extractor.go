package entity

import (
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

// Extractor is the medical entity extraction engine. It compiles the
// vocabulary into regex matchers once at construction; after that every
// field is read-only, so a single instance is safe for concurrent use
// without locking.
type Extractor struct {
	vocab    Vocabulary
	patterns map[Category][]*regexp.Regexp
	logger   *zap.Logger
}

// New builds an extractor from the given vocabulary. It returns an error
// if the vocabulary fails validation or any pattern refuses to compile;
// a partially compiled engine would silently drop a category, so the
// whole construction fails instead.
func New(vocab Vocabulary, logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	patterns := make(map[Category][]*regexp.Regexp, len(categoryOrder))

	for c, terms := range vocab.Terms {
		compiled := make([]*regexp.Regexp, 0, len(terms))
		for _, term := range terms {
			// Whole-phrase boundary: the assertion wraps the escaped
			// term as a unit, not each word of it.
			expr := `(?i)\b` + regexp.QuoteMeta(term) + `\b`
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("failed to compile term %q in category %s: %w", term, c, err)
			}
			compiled = append(compiled, re)
		}
		patterns[c] = compiled
	}

	dosage := make([]*regexp.Regexp, 0, len(vocab.DosagePatterns))
	for _, p := range vocab.DosagePatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile dosage pattern %q: %w", p, err)
		}
		dosage = append(dosage, re)
	}
	patterns[CategoryDosage] = dosage

	e := &Extractor{
		vocab:    vocab,
		patterns: patterns,
		logger:   logger,
	}

	logger.Info("Entity extractor initialized",
		zap.Int("term_count", vocab.TermCount()),
		zap.Int("dosage_patterns", len(vocab.DosagePatterns)),
		zap.Int("categories", len(patterns)),
	)

	return e, nil
}

// Extract returns all entities found in text as a non-overlapping span
// set sorted by ascending start offset. An empty input is valid and
// yields an empty result.
func (e *Extractor) Extract(text string) []Span {
	candidates := e.match(text)
	accepted := resolveOverlaps(candidates)

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})

	return accepted
}

// match scans text with every compiled matcher and returns the raw
// candidate list. Candidates may duplicate or overlap each other; that is
// resolved later. Categories run in canonical order so the output is
// reproducible, though resolution does not depend on it.
func (e *Extractor) match(text string) []Span {
	var candidates []Span

	for _, c := range categoryOrder {
		for _, re := range e.patterns[c] {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				candidates = append(candidates, Span{
					Text:       text[loc[0]:loc[1]],
					Category:   c,
					Start:      loc[0],
					End:        loc[1],
					Confidence: 1.0,
				})
			}
		}
	}

	return candidates
}

// resolveOverlaps reduces a candidate list to a non-overlapping set with
// a greedy longest-first sweep: candidates are ordered by start offset,
// then by descending length so the most specific match at each position
// is considered first ("heart attack" beats "heart"), then by category
// order as the documented tie-break for equal-start, equal-length
// candidates. A candidate is accepted iff it shares no byte offset with
// anything already accepted.
func resolveOverlaps(candidates []Span) []Span {
	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]Span(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return a.Category.rank() < b.Category.rank()
	})

	var accepted []Span
	for _, cand := range sorted {
		overlaps := false
		for _, acc := range accepted {
			if cand.overlaps(acc) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, cand)
		}
	}

	return accepted
}

// Annotate returns text with every extracted entity rewritten as
// [<matched text>|<CATEGORY>]. Text with no entities comes back unchanged.
func (e *Extractor) Annotate(text string) string {
	spans := e.Extract(text)
	if len(spans) == 0 {
		return text
	}

	// Splice from the back so earlier offsets stay valid.
	annotated := text
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		annotation := "[" + s.Text + "|" + string(s.Category) + "]"
		annotated = annotated[:s.Start] + annotation + annotated[s.End:]
	}

	return annotated
}

// Summarize groups the extracted entities by category, keeping first-seen
// order for categories and for the distinct matched strings within each.
// De-duplication is case-sensitive on the matched text.
func (e *Extractor) Summarize(text string) Summary {
	spans := e.Extract(text)

	var summary Summary
	index := make(map[Category]int)
	seen := make(map[Category]map[string]bool)

	for _, s := range spans {
		i, ok := index[s.Category]
		if !ok {
			i = len(summary)
			index[s.Category] = i
			summary = append(summary, CategoryGroup{Category: s.Category})
			seen[s.Category] = make(map[string]bool)
		}
		if !seen[s.Category][s.Text] {
			seen[s.Category][s.Text] = true
			summary[i].Terms = append(summary[i].Terms, s.Text)
		}
	}

	return summary
}

// Vocabulary returns the vocabulary the extractor was built from.
func (e *Extractor) Vocabulary() Vocabulary {
	return e.vocab
}
