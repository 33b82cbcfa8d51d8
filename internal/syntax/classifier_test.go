package syntax

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewClassifier(DefaultTerms())

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"branded wins", "decolure bamboo sheets", GroupBranded},
		{"competitor before bamboo", "bamboo bay sheets queen", GroupCompetitor},
		{"cooling before bamboo", "bamboo cooling sheets", GroupCooling},
		{"irrelevant material", "silk pillowcase set", GroupIrrelevant},
		{"plain bamboo", "bambu bed set", GroupBamboo},
		{"generic sheet", "deep pocket bed set", GroupGeneric},
		{"fallback", "purple unicorn lamp", GroupIrrelevant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.text); got != tc.expected {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.expected)
			}
		})
	}
}

func TestClassifySizeSuffix(t *testing.T) {
	c := NewClassifier(DefaultTerms())

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"king", "bamboo sheets king size", "Bamboo|King"},
		{"queen", "cooling sheets queen", "Cooling|Queen"},
		{"california king wins over king", "bamboo sheets california king", "Bamboo|California King"},
		{"twin", "bamboo twin sheets", "Bamboo|Twin"},
		{"no size", "bamboo sheets", GroupBamboo},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.text); got != tc.expected {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.expected)
			}
		})
	}
}

func TestClassifySubstringMatching(t *testing.T) {
	c := NewClassifier(DefaultTerms())

	// Matching is deliberately substring based. Short curated fragments hit
	// inside longer words.
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"rest inside restful", "restful night sheets", GroupCompetitor},
		{"plus sign", "mattress+topper", GroupIrrelevant},
		{"misspelled bamboo", "bmaboo sheets", GroupBamboo},
		{"case insensitive", "DECOLURE SHEETS", GroupBranded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.text); got != tc.expected {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.expected)
			}
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := NewClassifier(DefaultTerms())
	if got := c.Classify(""); got != GroupIrrelevant {
		t.Fatalf("empty text = %q, want %q", got, GroupIrrelevant)
	}
	if got := c.Classify("   \t "); got != GroupIrrelevant {
		t.Fatalf("whitespace text = %q, want %q", got, GroupIrrelevant)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultTerms())
	first := c.Classify("cozy bamboo cooling sheets king")
	for i := 0; i < 50; i++ {
		if got := c.Classify("cozy bamboo cooling sheets king"); got != first {
			t.Fatalf("iteration %d: got %q, want %q", i, got, first)
		}
	}
}

func TestNewClassifierFromFile(t *testing.T) {
	path := tempTermsJSON(t, map[string][]string{
		"branded": {"acmesheets"},
	})
	c, err := NewClassifierFromFile(path)
	if err != nil {
		t.Fatalf("classifier from file: %v", err)
	}

	if got := c.Classify("acmesheets queen"); got != GroupBranded {
		t.Fatalf("custom branded term = %q, want %q", got, GroupBranded)
	}
	// Lists absent from the file keep the built-in curation.
	if got := c.Classify("bamboo sheets king"); got != "Bamboo|King" {
		t.Fatalf("default bamboo term = %q, want Bamboo|King", got)
	}
}

func TestNewClassifierFromFileMissing(t *testing.T) {
	if _, err := NewClassifierFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing terms file")
	}
}

func TestRoot(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"Bamboo|King", "Bamboo"},
		{"Cooling|California King", "Cooling"},
		{"Generic", "Generic"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Root(tc.label); got != tc.expected {
			t.Fatalf("Root(%q) = %q, want %q", tc.label, got, tc.expected)
		}
	}
}

func tempTermsJSON(t *testing.T, value any) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "terms-*.json")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return f.Name()
}
