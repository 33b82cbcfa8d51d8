package syntax

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Group labels produced by classification. Size-qualified labels append
// "|<Size>" to GroupCooling or GroupBamboo.
const (
	GroupIrrelevant = "Irrelevant"
	GroupBranded    = "Branded Keyword"
	GroupCompetitor = "Competitor Branded Keyword"
	GroupCooling    = "Cooling"
	GroupBamboo     = "Bamboo"
	GroupGeneric    = "Generic"
)

// RootSeparator splits a size-qualified label into root and size suffix.
const RootSeparator = "|"

// sizeSuffixes is checked in order; "california king" must precede "king"
// so the longer name wins.
var sizeSuffixes = []struct {
	term   string
	suffix string
}{
	{"california king", "|California King"},
	{"queen", "|Queen"},
	{"king", "|King"},
	{"full", "|Full"},
	{"twin", "|Twin"},
}

// rule pairs a term list with the label it produces. Rules are evaluated in
// order and the first match wins, so placement in the slice encodes priority.
type rule struct {
	terms      []string
	label      string
	sized      bool
	lowerTerms []string
}

// Classifier maps keyword or search-term text to a syntax group label.
type Classifier struct {
	rules []rule
}

// NewClassifier builds a classifier over the provided term lists.
func NewClassifier(terms Terms) *Classifier {
	c := &Classifier{rules: []rule{
		{terms: terms.Branded, label: GroupBranded},
		{terms: terms.Competitor, label: GroupCompetitor},
		{terms: terms.Irrelevant, label: GroupIrrelevant},
		{terms: terms.Cooling, label: GroupCooling, sized: true},
		{terms: terms.Bamboo, label: GroupBamboo, sized: true},
		{terms: terms.Generic, label: GroupGeneric},
	}}
	for i := range c.rules {
		lowered := make([]string, 0, len(c.rules[i].terms))
		for _, term := range c.rules[i].terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				lowered = append(lowered, term)
			}
		}
		c.rules[i].lowerTerms = lowered
	}
	return c
}

// NewClassifierFromFile constructs a classifier from a JSON term-list file.
// Lists absent from the file fall back to the built-in curation.
func NewClassifierFromFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read syntax terms: %w", err)
	}
	terms := DefaultTerms()
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("unmarshal syntax terms: %w", err)
	}
	return NewClassifier(terms), nil
}

// Classify assigns a syntax group label to the supplied text. It is a total
// function: every input maps to a label, empty and unmatched text included.
//
// Matching is a case-insensitive substring check, not a token match. Term
// entries are expected to hit inside larger words (misspellings and
// concatenations are anticipated by the curation); do not tighten this to
// word boundaries.
func (c *Classifier) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return GroupIrrelevant
	}
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if !containsAny(lower, r.lowerTerms) {
			continue
		}
		if r.sized {
			return r.label + detectSize(lower)
		}
		return r.label
	}
	return GroupIrrelevant
}

// Root returns the portion of a label before the size separator, trimmed.
func Root(label string) string {
	if idx := strings.Index(label, RootSeparator); idx >= 0 {
		return strings.TrimSpace(label[:idx])
	}
	return strings.TrimSpace(label)
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func detectSize(lower string) string {
	for _, s := range sizeSuffixes {
		if strings.Contains(lower, s.term) {
			return s.suffix
		}
	}
	return ""
}
