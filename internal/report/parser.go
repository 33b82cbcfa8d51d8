// Package report parses the flat CSV rendition of the sponsored-products
// bulk performance report. One file mixes entity kinds; the Entity column
// routes each row. Keyword and search-term text is labeled by the supplied
// classifier while parsing, so labels are fixed at ingestion time.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record entity values in the report's Entity column.
const (
	entityCampaign   = "campaign"
	entityAdGroup    = "ad group"
	entityKeyword    = "keyword"
	entitySearchTerm = "search term"
	entityPlacement  = "bidding adjustment"
	entityPortfolio  = "portfolio"
)

// CampaignRecord is one campaign row from the report.
type CampaignRecord struct {
	AmazonCampaignID string
	Name             string
	Portfolio        string
	DailyBudget      float64
	BiddingStrategy  string
	TargetingType    string
	State            string
	Impressions      int
	Clicks           int
	Cost             float64
	Sales            float64
	Orders           int
	Units            int
}

// AdGroupRecord is one ad-group row from the report.
type AdGroupRecord struct {
	AmazonAdGroupID  string
	AmazonCampaignID string
	Name             string
	CampaignName     string
	DefaultBid       float64
	State            string
}

// KeywordRecord is one keyword row with its computed syntax label.
type KeywordRecord struct {
	AmazonKeywordID  string
	AmazonCampaignID string
	AmazonAdGroupID  string
	CampaignName     string
	AdGroupName      string
	KeywordText      string
	MatchType        string
	Bid              float64
	State            string
	SyntaxGroup      string
	Impressions      int
	Clicks           int
	Cost             float64
	Sales            float64
	Orders           int
}

// SearchTermRecord is one customer-search-term row with its label.
type SearchTermRecord struct {
	AmazonCampaignID string
	AmazonAdGroupID  string
	AmazonKeywordID  string
	SearchTerm       string
	SyntaxGroup      string
	Impressions      int
	Clicks           int
	Cost             float64
	Sales            float64
	Orders           int
	Units            int
}

// PlacementRecord is one bidding-adjustment row.
type PlacementRecord struct {
	AmazonCampaignID string
	CampaignName     string
	Placement        string
	Percentage       int
	Impressions      int
	Clicks           int
	Cost             float64
	Sales            float64
	Orders           int
}

// PortfolioRecord is one portfolio row.
type PortfolioRecord struct {
	AmazonPortfolioID string
	Name              string
	State             string
}

// Report is the parsed upload, split by entity kind.
type Report struct {
	Campaigns   []CampaignRecord
	AdGroups    []AdGroupRecord
	Keywords    []KeywordRecord
	SearchTerms []SearchTermRecord
	Placements  []PlacementRecord
	Portfolios  []PortfolioRecord
	RowCount    int
}

// Classifier labels keyword or search-term text.
type Classifier interface {
	Classify(text string) string
}

// Parse reads the report CSV. Unknown entity rows are skipped, malformed
// numeric cells coerce to zero, and the first header cell may carry a BOM.
func Parse(r io.Reader, classifier Classifier) (*Report, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("report is empty")
		}
		return nil, fmt.Errorf("read report header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols["entity"]; !ok {
		return nil, errors.New("report is missing the Entity column")
	}

	report := &Report{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read report row: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		row := rowReader{cols: cols, record: record}
		entity := strings.ToLower(row.str("entity"))
		if entity == "" {
			continue
		}
		report.RowCount++

		switch entity {
		case entityCampaign:
			report.Campaigns = append(report.Campaigns, CampaignRecord{
				AmazonCampaignID: row.str("campaign id"),
				Name:             row.str("campaign name"),
				Portfolio:        row.str("portfolio name"),
				DailyBudget:      row.num("daily budget"),
				BiddingStrategy:  row.str("bidding strategy"),
				TargetingType:    row.str("targeting type"),
				State:            strings.ToLower(row.str("state")),
				Impressions:      row.count("impressions"),
				Clicks:           row.count("clicks"),
				Cost:             row.num("spend"),
				Sales:            row.num("sales"),
				Orders:           row.count("orders"),
				Units:            row.count("units"),
			})
		case entityAdGroup:
			report.AdGroups = append(report.AdGroups, AdGroupRecord{
				AmazonAdGroupID:  row.str("ad group id"),
				AmazonCampaignID: row.str("campaign id"),
				Name:             row.str("ad group name"),
				CampaignName:     row.str("campaign name"),
				DefaultBid:       row.num("ad group default bid"),
				State:            strings.ToLower(row.str("state")),
			})
		case entityKeyword:
			text := row.str("keyword text")
			report.Keywords = append(report.Keywords, KeywordRecord{
				AmazonKeywordID:  row.str("keyword id"),
				AmazonCampaignID: row.str("campaign id"),
				AmazonAdGroupID:  row.str("ad group id"),
				CampaignName:     row.str("campaign name"),
				AdGroupName:      row.str("ad group name"),
				KeywordText:      text,
				MatchType:        row.str("match type"),
				Bid:              row.num("bid"),
				State:            strings.ToLower(row.str("state")),
				SyntaxGroup:      classifier.Classify(text),
				Impressions:      row.count("impressions"),
				Clicks:           row.count("clicks"),
				Cost:             row.num("spend"),
				Sales:            row.num("sales"),
				Orders:           row.count("orders"),
			})
		case entitySearchTerm:
			term := row.str("customer search term")
			report.SearchTerms = append(report.SearchTerms, SearchTermRecord{
				AmazonCampaignID: row.str("campaign id"),
				AmazonAdGroupID:  row.str("ad group id"),
				AmazonKeywordID:  row.str("keyword id"),
				SearchTerm:       term,
				SyntaxGroup:      classifier.Classify(term),
				Impressions:      row.count("impressions"),
				Clicks:           row.count("clicks"),
				Cost:             row.num("spend"),
				Sales:            row.num("sales"),
				Orders:           row.count("orders"),
				Units:            row.count("units"),
			})
		case entityPlacement:
			report.Placements = append(report.Placements, PlacementRecord{
				AmazonCampaignID: row.str("campaign id"),
				CampaignName:     row.str("campaign name"),
				Placement:        row.str("placement"),
				Percentage:       row.count("percentage"),
				Impressions:      row.count("impressions"),
				Clicks:           row.count("clicks"),
				Cost:             row.num("spend"),
				Sales:            row.num("sales"),
				Orders:           row.count("orders"),
			})
		case entityPortfolio:
			report.Portfolios = append(report.Portfolios, PortfolioRecord{
				AmazonPortfolioID: row.str("portfolio id"),
				Name:              row.str("portfolio name"),
				State:             strings.ToLower(row.str("state")),
			})
		default:
			report.RowCount--
		}
	}
	return report, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, exists := cols[name]; !exists {
			cols[name] = idx
		}
	}
	return cols
}

type rowReader struct {
	cols   map[string]int
	record []string
}

func (r rowReader) str(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// num coerces a cell to float64; blank or malformed cells become 0.
func (r rowReader) num(name string) float64 {
	raw := r.str(name)
	if raw == "" {
		return 0
	}
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSuffix(raw, "%")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return n
}

func (r rowReader) count(name string) int {
	return int(r.num(name))
}
