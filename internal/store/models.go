package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Portfolio groups campaigns for filtering.
type Portfolio struct {
	ID                uint   `gorm:"primaryKey"`
	AmazonPortfolioID string `gorm:"size:64;uniqueIndex"`
	Name              string `gorm:"size:256;index"`
	State             string `gorm:"size:32"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Campaign is one sponsored-products campaign with its live settings.
type Campaign struct {
	ID               uint   `gorm:"primaryKey"`
	AmazonCampaignID string `gorm:"size:64;uniqueIndex"`
	Name             string `gorm:"size:256;index"`
	Portfolio        string `gorm:"size:256;index"`
	CampaignType     string `gorm:"size:64"`
	TargetingType    string `gorm:"size:32"`
	State            string `gorm:"size:32;index"`
	DailyBudget      float64
	BiddingStrategy  string `gorm:"size:64"`
	TosModifier      int
	RosModifier      int
	PdpModifier      int
	TargetAcos       *float64
	TargetRoas       *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AdGroup sits between a campaign and its keywords.
type AdGroup struct {
	ID              uint   `gorm:"primaryKey"`
	AmazonAdGroupID string `gorm:"size:64;uniqueIndex"`
	CampaignID      uint   `gorm:"index"`
	Name            string `gorm:"size:256"`
	CampaignName    string `gorm:"size:256"`
	DefaultBid      float64
	State           string `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Keyword carries the targeted text plus the syntax label computed at
// ingestion. The label is derived from the text once and not recomputed.
type Keyword struct {
	ID              uint   `gorm:"primaryKey"`
	AmazonKeywordID string `gorm:"size:64;uniqueIndex"`
	AdGroupID       uint   `gorm:"index"`
	CampaignID      uint   `gorm:"index"`
	KeywordText     string `gorm:"size:512"`
	MatchType       string `gorm:"size:32;index"`
	Bid             float64
	State           string `gorm:"size:32"`
	SyntaxGroup     string `gorm:"size:64;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// KeywordMetric is one day of keyword performance.
type KeywordMetric struct {
	ID          uint      `gorm:"primaryKey"`
	KeywordID   uint      `gorm:"index"`
	Date        time.Time `gorm:"index"`
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// CampaignMetric is one day of campaign performance.
type CampaignMetric struct {
	ID          uint      `gorm:"primaryKey"`
	CampaignID  uint      `gorm:"index"`
	Date        time.Time `gorm:"index"`
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	Units       int
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// SearchTerm is a customer search term attributed to a keyword, with the
// windowed metrics the bulk report supplies and its own syntax label.
type SearchTerm struct {
	ID          uint   `gorm:"primaryKey"`
	KeywordID   uint   `gorm:"index"`
	CampaignID  uint   `gorm:"index"`
	SearchTerm  string `gorm:"size:512"`
	SyntaxGroup string `gorm:"size:64;index"`
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	Units       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlacementMetric holds per-placement campaign performance and the current
// bid adjustment percentage.
type PlacementMetric struct {
	ID          uint   `gorm:"primaryKey"`
	CampaignID  uint   `gorm:"index"`
	Placement   string `gorm:"size:64"`
	Percentage  int
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChangeSet is a batch of proposed mutations with a one-way lifecycle.
type ChangeSet struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:128"`
	Status       string `gorm:"size:16;index"`
	ErrorMessage string `gorm:"type:text"`
	ExportedAt   *time.Time
	AppliedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []ChangeSetItem `gorm:"constraint:OnDelete:CASCADE"`
}

// ChangeSetItem targets one campaign or keyword with a changes map and an
// optional pre-change snapshot, both stored as JSON columns.
type ChangeSetItem struct {
	ID                 uint   `gorm:"primaryKey"`
	ChangeSetID        uint   `gorm:"index"`
	EntityType         string `gorm:"size:16"`
	EntityID           uint
	EntityName         string `gorm:"size:512"`
	CampaignName       string `gorm:"size:256"`
	AdGroupName        string `gorm:"size:256"`
	AmazonCampaignID   string `gorm:"size:64"`
	AmazonAdGroupID    string `gorm:"size:64"`
	AmazonKeywordID    string `gorm:"size:64"`
	MatchType          string `gorm:"size:32"`
	ChangesJSON        string `gorm:"type:text"`
	PreviousValuesJSON string `gorm:"type:text"`
	CreatedAt          time.Time
}

// SetChanges persists the changes map as JSON.
func (i *ChangeSetItem) SetChanges(changes map[string]any) {
	if changes == nil {
		i.ChangesJSON = "{}"
		return
	}
	payload, _ := json.Marshal(changes)
	i.ChangesJSON = string(payload)
}

// Changes returns the decoded changes map.
func (i *ChangeSetItem) Changes() map[string]any {
	if strings.TrimSpace(i.ChangesJSON) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(i.ChangesJSON), &out); err != nil {
		return nil
	}
	return out
}

// SetPreviousValues persists the pre-change snapshot as JSON.
func (i *ChangeSetItem) SetPreviousValues(values map[string]any) {
	if values == nil {
		i.PreviousValuesJSON = ""
		return
	}
	payload, _ := json.Marshal(values)
	i.PreviousValuesJSON = string(payload)
}

// PreviousValues returns the decoded snapshot, nil when absent.
func (i *ChangeSetItem) PreviousValues() map[string]any {
	if strings.TrimSpace(i.PreviousValuesJSON) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(i.PreviousValuesJSON), &out); err != nil {
		return nil
	}
	return out
}

// Alert is a detected performance or budget condition.
type Alert struct {
	ID           uint      `gorm:"primaryKey"`
	Type         string    `gorm:"size:32;index"`
	Severity     string    `gorm:"size:16"`
	Title        string    `gorm:"size:256"`
	Message      string    `gorm:"type:text"`
	CampaignID   uint      `gorm:"index"`
	MetadataJSON string    `gorm:"type:text"`
	IsResolved   bool      `gorm:"index"`
	TriggeredAt  time.Time `gorm:"index"`
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

// SetMetadata persists alert context as JSON.
func (a *Alert) SetMetadata(metadata map[string]any) {
	if metadata == nil {
		a.MetadataJSON = "{}"
		return
	}
	payload, _ := json.Marshal(metadata)
	a.MetadataJSON = string(payload)
}

// Metadata returns the decoded alert context.
func (a *Alert) Metadata() map[string]any {
	if strings.TrimSpace(a.MetadataJSON) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(a.MetadataJSON), &out); err != nil {
		return nil
	}
	return out
}

// ReportBatch records one bulk report upload and its ingestion counts.
type ReportBatch struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:128;index"`
	OriginalFilename string `gorm:"size:256"`
	Status           string `gorm:"size:32"`
	RowCount         int
	CampaignCount    int
	KeywordCount     int
	SearchTermCount  int
	IngestedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
