package changeset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// BulksheetHeaders is the fixed column set of the bulk-upload format, in
// file order. Rows leave irrelevant columns blank.
var BulksheetHeaders = []string{
	"Product", "Entity", "Operation", "Campaign Id", "Ad Group Id",
	"Portfolio Id", "Ad Id (Read only)", "Keyword Id (Read only)",
	"Product Targeting Id (Read only)", "Campaign Name", "Ad Group Name",
	"Start Date", "End Date", "Targeting Type", "State", "Daily Budget",
	"SKU", "ASIN", "Ad Group Default Bid", "Bid", "Keyword Text",
	"Match Type", "Bidding Strategy", "Placement", "Percentage",
	"Product Targeting Expression",
}

// modifierPlacements maps placement-modifier change keys to the display
// string the bulk tooling expects in the Placement column.
var modifierPlacements = []struct {
	key       string
	placement string
}{
	{"tosModifier", "Placement Top"},
	{"rosModifier", "Placement Rest Of Search"},
	{"pdpModifier", "Placement Product Page"},
}

// BulksheetRow maps header name to cell value.
type BulksheetRow map[string]string

func emptyRow() BulksheetRow {
	row := make(BulksheetRow, len(BulksheetHeaders))
	for _, h := range BulksheetHeaders {
		row[h] = ""
	}
	row["Product"] = "Sponsored Products"
	row["Operation"] = "Update"
	return row
}

// GenerateBulksheetRows flattens change-set items into bulksheet rows. A
// campaign item yields one Campaign row when budget or state changed plus one
// Bidding Adjustment row per placement modifier present; a keyword item
// yields a single Keyword row.
func GenerateBulksheetRows(items []Item) []BulksheetRow {
	var rows []BulksheetRow
	for _, item := range items {
		switch item.EntityType {
		case EntityCampaign:
			budget, hasBudget := item.Changes["budget"]
			state, hasState := item.Changes["state"]
			if (hasBudget && budget != nil) || (hasState && state != nil) {
				row := emptyRow()
				row["Entity"] = "Campaign"
				row["Campaign Id"] = item.AmazonCampaignID
				row["Campaign Name"] = item.EntityName
				if hasBudget && budget != nil {
					row["Daily Budget"] = formatCell(budget)
				}
				if hasState && state != nil {
					row["State"] = formatCell(state)
				}
				rows = append(rows, row)
			}
			for _, mod := range modifierPlacements {
				value, ok := item.Changes[mod.key]
				if !ok || value == nil {
					continue
				}
				row := emptyRow()
				row["Entity"] = "Bidding Adjustment"
				row["Campaign Id"] = item.AmazonCampaignID
				row["Campaign Name"] = item.EntityName
				row["Placement"] = mod.placement
				row["Percentage"] = formatCell(value)
				rows = append(rows, row)
			}
		case EntityKeyword:
			row := emptyRow()
			row["Entity"] = "Keyword"
			row["Campaign Id"] = item.AmazonCampaignID
			row["Ad Group Id"] = item.AmazonAdGroupID
			row["Keyword Id (Read only)"] = item.AmazonKeywordID
			row["Campaign Name"] = item.CampaignName
			row["Ad Group Name"] = item.AdGroupName
			row["Keyword Text"] = item.EntityName
			if item.MatchType != "" {
				row["Match Type"] = titleCaseMatchType(item.MatchType)
			}
			if bid, ok := item.Changes["bid"]; ok && bid != nil {
				row["Bid"] = formatCell(bid)
			}
			if state, ok := item.Changes["state"]; ok && state != nil {
				row["State"] = formatCell(state)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteBulksheetCSV serializes rows in header order, header line first.
func WriteBulksheetCSV(w io.Writer, rows []BulksheetRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(BulksheetHeaders); err != nil {
		return fmt.Errorf("write bulksheet header: %w", err)
	}
	line := make([]string, len(BulksheetHeaders))
	for _, row := range rows {
		for i, h := range BulksheetHeaders {
			line[i] = row[h]
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write bulksheet row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// titleCaseMatchType renders "EXACT"/"exact" as "Exact".
func titleCaseMatchType(mt string) string {
	if mt == "" {
		return ""
	}
	return strings.ToUpper(mt[:1]) + strings.ToLower(mt[1:])
}

// formatCell renders a changes-map value the way the upstream JSON encoder
// would: numbers without a trailing ".0" when integral.
func formatCell(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
