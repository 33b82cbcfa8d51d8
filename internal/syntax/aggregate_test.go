package syntax

import (
	"testing"

	"ppc-dashboard/backend/internal/metrics"
)

func row(label, member, campaign string, t metrics.Totals) Row {
	return Row{Label: label, MemberID: member, CampaignID: campaign, Totals: t}
}

func TestAggregateByLabel(t *testing.T) {
	rows := []Row{
		row("Bamboo|King", "k1", "c1", metrics.Totals{Impressions: 1000, Clicks: 90, Cost: 45, Sales: 200, Orders: 4}),
		row("Bamboo|King", "k2", "c2", metrics.Totals{Impressions: 500, Clicks: 10, Cost: 55, Sales: 100, Orders: 1}),
		row("Generic", "k3", "c1", metrics.Totals{Impressions: 200, Clicks: 5, Cost: 2, Sales: 0, Orders: 0}),
	}

	groups := Aggregate(rows, ByLabel)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Cost-descending ordering: Bamboo|King (100) before Generic (2).
	g := groups[0]
	if g.Key != "Bamboo|King" {
		t.Fatalf("expected Bamboo|King first, got %q", g.Key)
	}
	if g.KeywordCount != 2 || g.CampaignCount != 2 {
		t.Fatalf("counts = %d keywords / %d campaigns, want 2/2", g.KeywordCount, g.CampaignCount)
	}
	if g.Impressions != 1500 || g.Clicks != 100 || g.Cost != 100 || g.Sales != 300 || g.Orders != 5 {
		t.Fatalf("unexpected totals: %+v", g.Totals)
	}
}

func TestAggregateRatesFromSums(t *testing.T) {
	// Two members with very different efficiency. The group CPC must come
	// from summed cost over summed clicks, not from averaging member CPCs.
	rows := []Row{
		row("Bamboo", "k1", "c1", metrics.Totals{Clicks: 1, Cost: 905}),
		row("Bamboo", "k2", "c1", metrics.Totals{Clicks: 99, Cost: 100}),
	}

	groups := Aggregate(rows, ByLabel)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if got := groups[0].CPC; got != 10.05 {
		t.Fatalf("CPC = %v, want 10.05", got)
	}
}

func TestAggregateZeroDenominators(t *testing.T) {
	rows := []Row{
		row("Generic", "k1", "c1", metrics.Totals{Impressions: 0, Clicks: 0, Cost: 0, Sales: 0, Orders: 0}),
	}
	groups := Aggregate(rows, ByLabel)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.CTR != 0 || g.CVR != 0 || g.CPC != 0 || g.ACOS != 0 || g.ROAS != 0 {
		t.Fatalf("expected all-zero rates, got %+v", g)
	}
}

func TestAggregateByRoot(t *testing.T) {
	rows := []Row{
		row("Bamboo|King", "k1", "c1", metrics.Totals{Cost: 10, Sales: 50}),
		row("Bamboo|Queen", "k2", "c1", metrics.Totals{Cost: 20, Sales: 30}),
		row("Bamboo", "k3", "c2", metrics.Totals{Cost: 5, Sales: 5}),
		row("Cooling|Twin", "k4", "c2", metrics.Totals{Cost: 1, Sales: 1}),
	}

	groups := Aggregate(rows, ByRoot)
	if len(groups) != 2 {
		t.Fatalf("expected 2 root groups, got %d", len(groups))
	}

	bamboo := groups[0]
	if bamboo.Key != "Bamboo" {
		t.Fatalf("expected Bamboo first by cost, got %q", bamboo.Key)
	}
	if bamboo.KeywordCount != 3 || bamboo.CampaignCount != 2 {
		t.Fatalf("counts = %d keywords / %d campaigns, want 3/2", bamboo.KeywordCount, bamboo.CampaignCount)
	}
	if bamboo.Cost != 35 || bamboo.Sales != 85 {
		t.Fatalf("totals = cost %v sales %v, want 35/85", bamboo.Cost, bamboo.Sales)
	}
	if len(bamboo.SubGroups) != 3 {
		t.Fatalf("sub groups = %v, want 3 entries", bamboo.SubGroups)
	}
	want := []string{"Bamboo", "Bamboo|King", "Bamboo|Queen"}
	for i, sub := range want {
		if bamboo.SubGroups[i] != sub {
			t.Fatalf("sub groups = %v, want %v", bamboo.SubGroups, want)
		}
	}
}

func TestAggregateDuplicateMembers(t *testing.T) {
	// The same member appearing twice contributes metrics twice but counts
	// once.
	rows := []Row{
		row("Generic", "k1", "c1", metrics.Totals{Clicks: 5, Cost: 10}),
		row("Generic", "k1", "c1", metrics.Totals{Clicks: 5, Cost: 10}),
	}
	groups := Aggregate(rows, ByLabel)
	if groups[0].KeywordCount != 1 {
		t.Fatalf("keyword count = %d, want 1", groups[0].KeywordCount)
	}
	if groups[0].Cost != 20 {
		t.Fatalf("cost = %v, want 20", groups[0].Cost)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if groups := Aggregate(nil, ByLabel); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
