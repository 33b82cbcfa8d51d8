package report

import (
	"strings"
	"testing"

	"ppc-dashboard/backend/internal/syntax"
)

const sampleReport = `Entity,Campaign Id,Ad Group Id,Keyword Id,Portfolio Id,Campaign Name,Ad Group Name,Portfolio Name,Keyword Text,Customer Search Term,Match Type,Placement,Percentage,State,Daily Budget,Ad Group Default Bid,Bid,Bidding Strategy,Targeting Type,Impressions,Clicks,Spend,Sales,Orders,Units
Portfolio,,,,P1,,,Bamboo Line,,,,,,enabled,,,,,,,,,,,
Campaign,C1,,,,Bamboo - Exact,,Bamboo Line,,,,,,ENABLED,25.00,,,Dynamic bids - down only,MANUAL,"1,200",45,"$32.50","$180.00",6,7
Ad Group,C1,AG1,,,Bamboo - Exact,King,,,,,,,enabled,,1.10,,,,,,,,,
Keyword,C1,AG1,KW1,,Bamboo - Exact,King,,bamboo sheets king,,exact,,,enabled,,,1.25,,,800,30,$24.00,$150.00,5,
Search Term,C1,AG1,KW1,,,,,,cooling sheets queen,,,,,,,,,,120,4,$3.10,$0.00,0,0
Bidding Adjustment,C1,,,,Bamboo - Exact,,,,,,Placement Top,25%,,,,,,,"2,000",60,$40.00,$200.00,8,
Product Ad,C1,,,,,,,,,,,,,,,,,,,,,,,
`

func TestParseReport(t *testing.T) {
	classifier := syntax.NewClassifier(syntax.DefaultTerms())
	report, err := Parse(strings.NewReader(sampleReport), classifier)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// The Product Ad row routes nowhere and is not counted.
	if report.RowCount != 6 {
		t.Fatalf("row count = %d, want 6", report.RowCount)
	}

	if len(report.Portfolios) != 1 || report.Portfolios[0].Name != "Bamboo Line" {
		t.Fatalf("portfolios = %+v", report.Portfolios)
	}

	if len(report.Campaigns) != 1 {
		t.Fatalf("campaigns = %+v", report.Campaigns)
	}
	c := report.Campaigns[0]
	if c.AmazonCampaignID != "C1" || c.Name != "Bamboo - Exact" {
		t.Fatalf("campaign identity wrong: %+v", c)
	}
	if c.State != "enabled" {
		t.Fatalf("state = %q, want lowercased", c.State)
	}
	if c.DailyBudget != 25 || c.Impressions != 1200 || c.Cost != 32.5 || c.Sales != 180 {
		t.Fatalf("campaign numbers wrong: %+v", c)
	}

	if len(report.AdGroups) != 1 || report.AdGroups[0].DefaultBid != 1.10 {
		t.Fatalf("ad groups = %+v", report.AdGroups)
	}

	if len(report.Keywords) != 1 {
		t.Fatalf("keywords = %+v", report.Keywords)
	}
	k := report.Keywords[0]
	if k.KeywordText != "bamboo sheets king" || k.Bid != 1.25 {
		t.Fatalf("keyword wrong: %+v", k)
	}
	if k.SyntaxGroup != "Bamboo|King" {
		t.Fatalf("keyword syntax group = %q, want Bamboo|King", k.SyntaxGroup)
	}

	if len(report.SearchTerms) != 1 {
		t.Fatalf("search terms = %+v", report.SearchTerms)
	}
	st := report.SearchTerms[0]
	if st.SearchTerm != "cooling sheets queen" || st.SyntaxGroup != "Cooling|Queen" {
		t.Fatalf("search term wrong: %+v", st)
	}

	if len(report.Placements) != 1 {
		t.Fatalf("placements = %+v", report.Placements)
	}
	p := report.Placements[0]
	if p.Placement != "Placement Top" || p.Percentage != 25 {
		t.Fatalf("placement wrong: %+v", p)
	}
	if p.Impressions != 2000 || p.Cost != 40 {
		t.Fatalf("placement numbers wrong: %+v", p)
	}
}

func TestParseMalformedNumbers(t *testing.T) {
	input := "Entity,Campaign Id,Campaign Name,State,Daily Budget,Impressions,Clicks,Spend,Sales,Orders,Units\n" +
		"Campaign,C1,Test,enabled,abc,n/a,,-,$1x,,\n"
	classifier := syntax.NewClassifier(syntax.DefaultTerms())
	report, err := Parse(strings.NewReader(input), classifier)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := report.Campaigns[0]
	if c.DailyBudget != 0 || c.Impressions != 0 || c.Cost != 0 || c.Sales != 0 {
		t.Fatalf("malformed cells must coerce to zero: %+v", c)
	}
}

func TestParseBOMHeader(t *testing.T) {
	input := "\ufeffEntity,Campaign Id,Campaign Name,State\nCampaign,C1,Test,enabled\n"
	classifier := syntax.NewClassifier(syntax.DefaultTerms())
	report, err := Parse(strings.NewReader(input), classifier)
	if err != nil {
		t.Fatalf("parse with BOM: %v", err)
	}
	if len(report.Campaigns) != 1 {
		t.Fatalf("campaigns = %+v", report.Campaigns)
	}
}

func TestParseMissingEntityColumn(t *testing.T) {
	classifier := syntax.NewClassifier(syntax.DefaultTerms())
	if _, err := Parse(strings.NewReader("Campaign Name,State\nTest,enabled\n"), classifier); err == nil {
		t.Fatal("expected error for missing entity column")
	}
}

func TestParseEmptyInput(t *testing.T) {
	classifier := syntax.NewClassifier(syntax.DefaultTerms())
	if _, err := Parse(strings.NewReader(""), classifier); err == nil {
		t.Fatal("expected error for empty report")
	}
}

func TestParseRequiresClassifier(t *testing.T) {
	if _, err := Parse(strings.NewReader(sampleReport), nil); err == nil {
		t.Fatal("expected error for nil classifier")
	}
}
