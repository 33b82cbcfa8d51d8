package changeset

import "testing"

func campaignItem(changes map[string]any) Item {
	return Item{
		EntityType: EntityCampaign,
		EntityID:   1,
		EntityName: "Bamboo Sheets - Exact",
		Changes:    changes,
	}
}

func keywordItem(changes map[string]any) Item {
	return Item{
		EntityType: EntityKeyword,
		EntityID:   2,
		EntityName: "bamboo sheets king",
		MatchType:  "exact",
		Changes:    changes,
	}
}

func TestValidateItemsValid(t *testing.T) {
	items := []Item{
		campaignItem(map[string]any{"budget": 25.0, "state": "enabled", "tosModifier": 50.0}),
		keywordItem(map[string]any{"bid": 1.25, "state": "paused"}),
	}
	if errs := ValidateItems(items); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateItemsBudgetFloor(t *testing.T) {
	errs := ValidateItems([]Item{campaignItem(map[string]any{"budget": 0.5})})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "budget" || errs[0].Message != "Budget must be at least $1" {
		t.Fatalf("unexpected error: %+v", errs[0])
	}
}

func TestValidateItemsBidFloor(t *testing.T) {
	errs := ValidateItems([]Item{keywordItem(map[string]any{"bid": 0.01})})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "bid" || errs[0].Message != "Bid must be at least $0.02" {
		t.Fatalf("unexpected error: %+v", errs[0])
	}
	if errs := ValidateItems([]Item{keywordItem(map[string]any{"bid": 0.02})}); len(errs) != 0 {
		t.Fatalf("minimum bid should pass, got %v", errs)
	}
}

func TestValidateItemsState(t *testing.T) {
	errs := ValidateItems([]Item{keywordItem(map[string]any{"state": "archived"})})
	if len(errs) != 1 || errs[0].Field != "state" {
		t.Fatalf("expected state error, got %v", errs)
	}
	errs = ValidateItems([]Item{keywordItem(map[string]any{"state": 1})})
	if len(errs) != 1 || errs[0].Field != "state" {
		t.Fatalf("expected state error for non-string, got %v", errs)
	}
}

func TestValidateItemsModifierRange(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"zero", 0.0, false},
		{"max", 900.0, false},
		{"above max", 901.0, true},
		{"negative", -1.0, true},
		{"fractional", 50.5, true},
		{"non numeric", "50", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateItems([]Item{campaignItem(map[string]any{"tosModifier": tc.value})})
			if tc.wantErr && len(errs) != 1 {
				t.Fatalf("expected error, got %v", errs)
			}
			if !tc.wantErr && len(errs) != 0 {
				t.Fatalf("expected no error, got %v", errs)
			}
		})
	}
}

func TestValidateItemsRequiresAChange(t *testing.T) {
	errs := ValidateItems([]Item{campaignItem(map[string]any{})})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "changes" || errs[0].Message != "At least one change is required" {
		t.Fatalf("unexpected error: %+v", errs[0])
	}

	// Unrecognized keys do not count as changes.
	errs = ValidateItems([]Item{campaignItem(map[string]any{"color": "blue"})})
	if len(errs) != 1 || errs[0].Field != "changes" {
		t.Fatalf("unrecognized key should not satisfy the requirement, got %v", errs)
	}

	// A keyword item with campaign-only fields likewise has no recognized
	// change.
	errs = ValidateItems([]Item{keywordItem(map[string]any{"budget": 10.0})})
	if len(errs) != 1 || errs[0].Field != "changes" {
		t.Fatalf("expected changes error, got %v", errs)
	}
}

func TestValidateItemsCollectsAll(t *testing.T) {
	items := []Item{
		campaignItem(map[string]any{"budget": 0.0, "tosModifier": 1000.0}),
		keywordItem(map[string]any{"bid": 0.001, "state": "on"}),
	}
	errs := ValidateItems(items)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].ItemIndex != 0 || errs[2].ItemIndex != 1 {
		t.Fatalf("item indexes not preserved: %v", errs)
	}
}

func TestValidateItemsIntegerShapes(t *testing.T) {
	// JSON decoding yields float64 but direct callers may pass ints.
	errs := ValidateItems([]Item{campaignItem(map[string]any{"budget": 10, "tosModifier": int64(25)})})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
