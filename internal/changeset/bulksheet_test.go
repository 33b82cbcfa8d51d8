package changeset

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateBulksheetRowsKeyword(t *testing.T) {
	items := []Item{{
		EntityType:       EntityKeyword,
		EntityID:         7,
		EntityName:       "bamboo sheets king",
		CampaignName:     "Bamboo - Exact",
		AdGroupName:      "King",
		AmazonCampaignID: "C123",
		AmazonAdGroupID:  "AG456",
		AmazonKeywordID:  "KW789",
		MatchType:        "exact",
		Changes:          map[string]any{"bid": 1.5},
	}}

	rows := GenerateBulksheetRows(items)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["Entity"] != "Keyword" {
		t.Fatalf("Entity = %q", row["Entity"])
	}
	if row["Product"] != "Sponsored Products" || row["Operation"] != "Update" {
		t.Fatalf("constant columns wrong: %q / %q", row["Product"], row["Operation"])
	}
	if row["Bid"] != "1.5" {
		t.Fatalf("Bid = %q, want 1.5", row["Bid"])
	}
	if row["Keyword Text"] != "bamboo sheets king" || row["Match Type"] != "Exact" {
		t.Fatalf("keyword columns wrong: %q / %q", row["Keyword Text"], row["Match Type"])
	}
	if row["Campaign Id"] != "C123" || row["Ad Group Id"] != "AG456" || row["Keyword Id (Read only)"] != "KW789" {
		t.Fatalf("id columns wrong: %+v", row)
	}
	// Campaign-only columns stay blank on keyword rows.
	if row["Daily Budget"] != "" || row["Placement"] != "" || row["Percentage"] != "" {
		t.Fatalf("expected blank campaign columns, got %+v", row)
	}
}

func TestGenerateBulksheetRowsCampaignWithModifiers(t *testing.T) {
	items := []Item{{
		EntityType:       EntityCampaign,
		EntityID:         3,
		EntityName:       "Bamboo - Broad",
		AmazonCampaignID: "C999",
		Changes: map[string]any{
			"budget":      30.0,
			"state":       "paused",
			"tosModifier": 50.0,
			"pdpModifier": 25.0,
		},
	}}

	rows := GenerateBulksheetRows(items)
	if len(rows) != 3 {
		t.Fatalf("expected campaign row plus 2 adjustment rows, got %d", len(rows))
	}

	campaign := rows[0]
	if campaign["Entity"] != "Campaign" {
		t.Fatalf("first row Entity = %q", campaign["Entity"])
	}
	if campaign["Daily Budget"] != "30" || campaign["State"] != "paused" {
		t.Fatalf("campaign row wrong: budget %q state %q", campaign["Daily Budget"], campaign["State"])
	}

	// Adjustment rows follow the fixed tos, ros, pdp order; ros is absent
	// here.
	tos := rows[1]
	if tos["Entity"] != "Bidding Adjustment" || tos["Placement"] != "Placement Top" || tos["Percentage"] != "50" {
		t.Fatalf("tos row wrong: %+v", tos)
	}
	pdp := rows[2]
	if pdp["Placement"] != "Placement Product Page" || pdp["Percentage"] != "25" {
		t.Fatalf("pdp row wrong: %+v", pdp)
	}
}

func TestGenerateBulksheetRowsModifierOnly(t *testing.T) {
	items := []Item{{
		EntityType:       EntityCampaign,
		EntityID:         3,
		EntityName:       "Bamboo - Broad",
		AmazonCampaignID: "C999",
		Changes:          map[string]any{"rosModifier": 10.0},
	}}
	rows := GenerateBulksheetRows(items)
	if len(rows) != 1 {
		t.Fatalf("expected only the adjustment row, got %d", len(rows))
	}
	if rows[0]["Placement"] != "Placement Rest Of Search" {
		t.Fatalf("Placement = %q", rows[0]["Placement"])
	}
}

func TestWriteBulksheetCSV(t *testing.T) {
	items := []Item{{
		EntityType:       EntityKeyword,
		EntityID:         7,
		EntityName:       "bamboo sheets",
		AmazonCampaignID: "C1",
		MatchType:        "PHRASE",
		Changes:          map[string]any{"bid": 0.75},
	}}

	var buf bytes.Buffer
	if err := WriteBulksheetCSV(&buf, GenerateBulksheetRows(items)); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	header := strings.Split(lines[0], ",")
	if len(header) != len(BulksheetHeaders) {
		t.Fatalf("header has %d columns, want %d", len(header), len(BulksheetHeaders))
	}
	if header[0] != "Product" || header[1] != "Entity" {
		t.Fatalf("header order wrong: %v", header[:2])
	}
	if !strings.Contains(lines[1], "Phrase") {
		t.Fatalf("expected title-cased match type in %q", lines[1])
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{1.5, "1.5"},
		{30.0, "30"},
		{0.75, "0.75"},
		{int(25), "25"},
		{int64(900), "900"},
		{"paused", "paused"},
	}
	for _, tc := range tests {
		if got := formatCell(tc.value); got != tc.expected {
			t.Fatalf("formatCell(%v) = %q, want %q", tc.value, got, tc.expected)
		}
	}
}
