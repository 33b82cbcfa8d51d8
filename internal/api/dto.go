package api

import (
	"math"
	"time"

	"ppc-dashboard/backend/internal/changeset"
	"ppc-dashboard/backend/internal/metrics"
	"ppc-dashboard/backend/internal/store"
)

// MetricsDTO carries summed totals plus derived rates for a window.
type MetricsDTO struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Cost        float64 `json:"cost"`
	Sales       float64 `json:"sales"`
	Orders      int     `json:"orders"`
	Units       int     `json:"units,omitempty"`
	CTR         float64 `json:"ctr"`
	CVR         float64 `json:"cvr"`
	CPC         float64 `json:"cpc"`
	ACOS        float64 `json:"acos"`
	ROAS        float64 `json:"roas"`
}

func metricsDTO(impressions, clicks int, cost, sales float64, orders, units int) MetricsDTO {
	return MetricsDTO{
		Impressions: impressions,
		Clicks:      clicks,
		Cost:        round2(cost),
		Sales:       round2(sales),
		Orders:      orders,
		Units:       units,
		CTR:         round2(metrics.CTR(clicks, impressions)),
		CVR:         round2(metrics.ConversionRate(orders, clicks)),
		CPC:         round2(metrics.CPC(cost, clicks)),
		ACOS:        round2(metrics.ACOS(cost, sales)),
		ROAS:        round2(metrics.ROAS(sales, cost)),
	}
}

// CampaignDTO is the API representation of a campaign with windowed totals.
type CampaignDTO struct {
	ID               uint       `json:"id"`
	AmazonCampaignID string     `json:"amazon_campaign_id"`
	Name             string     `json:"name"`
	Portfolio        string     `json:"portfolio,omitempty"`
	TargetingType    string     `json:"targeting_type,omitempty"`
	State            string     `json:"state"`
	DailyBudget      float64    `json:"daily_budget"`
	BiddingStrategy  string     `json:"bidding_strategy,omitempty"`
	TosModifier      int        `json:"tos_modifier"`
	RosModifier      int        `json:"ros_modifier"`
	PdpModifier      int        `json:"pdp_modifier"`
	TargetAcos       *float64   `json:"target_acos,omitempty"`
	TargetRoas       *float64   `json:"target_roas,omitempty"`
	BudgetPacing     float64    `json:"budget_pacing"`
	Metrics          MetricsDTO `json:"metrics"`
}

// CampaignFromRow converts a store row into the DTO representation.
func CampaignFromRow(row store.CampaignRow) CampaignDTO {
	return CampaignDTO{
		ID:               row.ID,
		AmazonCampaignID: row.AmazonCampaignID,
		Name:             row.Name,
		Portfolio:        row.Portfolio,
		TargetingType:    row.TargetingType,
		State:            row.State,
		DailyBudget:      row.DailyBudget,
		BiddingStrategy:  row.BiddingStrategy,
		TosModifier:      row.TosModifier,
		RosModifier:      row.RosModifier,
		PdpModifier:      row.PdpModifier,
		TargetAcos:       row.TargetAcos,
		TargetRoas:       row.TargetRoas,
		BudgetPacing:     round2(metrics.BudgetPacing(row.Cost, row.DailyBudget)),
		Metrics:          metricsDTO(row.Impressions, row.Clicks, row.Cost, row.Sales, row.Orders, row.Units),
	}
}

// CampaignsResponse is the paginated campaign listing.
type CampaignsResponse struct {
	Items []CampaignDTO `json:"items"`
	Total int64         `json:"total"`
}

// KeywordDTO is the API representation of a keyword with windowed totals.
type KeywordDTO struct {
	ID              uint       `json:"id"`
	AmazonKeywordID string     `json:"amazon_keyword_id"`
	CampaignID      uint       `json:"campaign_id"`
	CampaignName    string     `json:"campaign_name"`
	AdGroupName     string     `json:"ad_group_name"`
	KeywordText     string     `json:"keyword_text"`
	MatchType       string     `json:"match_type"`
	Bid             float64    `json:"bid"`
	State           string     `json:"state"`
	SyntaxGroup     string     `json:"syntax_group,omitempty"`
	Metrics         MetricsDTO `json:"metrics"`
}

// KeywordFromRow converts a store keyword row into the DTO representation.
func KeywordFromRow(row store.KeywordRow) KeywordDTO {
	return KeywordDTO{
		ID:              row.ID,
		AmazonKeywordID: row.AmazonKeywordID,
		CampaignID:      row.CampaignID,
		CampaignName:    row.CampaignName,
		AdGroupName:     row.AdGroupName,
		KeywordText:     row.KeywordText,
		MatchType:       row.MatchType,
		Bid:             row.Bid,
		State:           row.State,
		SyntaxGroup:     row.SyntaxGroup,
		Metrics:         metricsDTO(row.Impressions, row.Clicks, row.Cost, row.Sales, row.Orders, 0),
	}
}

// KeywordsResponse is the keyword listing payload.
type KeywordsResponse struct {
	Items []KeywordDTO `json:"items"`
}

// SyntaxGroupDTO is one aggregated syntax group.
type SyntaxGroupDTO struct {
	SyntaxGroup   string     `json:"syntax_group"`
	KeywordCount  int        `json:"keyword_count"`
	CampaignCount int        `json:"campaign_count"`
	Metrics       MetricsDTO `json:"metrics"`
}

// RootDTO is one aggregated root group.
type RootDTO struct {
	Root             string     `json:"root"`
	SyntaxGroupCount int        `json:"syntax_group_count"`
	KeywordCount     int        `json:"keyword_count"`
	CampaignCount    int        `json:"campaign_count"`
	SubGroups        []string   `json:"sub_groups"`
	Metrics          MetricsDTO `json:"metrics"`
}

// SearchTermDTO is one customer search term with its stored metrics.
type SearchTermDTO struct {
	ID          uint       `json:"id"`
	SearchTerm  string     `json:"search_term"`
	SyntaxGroup string     `json:"syntax_group,omitempty"`
	Metrics     MetricsDTO `json:"metrics"`
}

// SearchTermFromModel converts a stored search term into its DTO.
func SearchTermFromModel(st store.SearchTerm) SearchTermDTO {
	return SearchTermDTO{
		ID:          st.ID,
		SearchTerm:  st.SearchTerm,
		SyntaxGroup: st.SyntaxGroup,
		Metrics:     metricsDTO(st.Impressions, st.Clicks, st.Cost, st.Sales, st.Orders, st.Units),
	}
}

// PlacementDTO is one placement's performance and bid adjustment.
type PlacementDTO struct {
	Placement  string     `json:"placement"`
	Percentage int        `json:"percentage"`
	Metrics    MetricsDTO `json:"metrics"`
}

// PlacementFromModel converts a stored placement metric into its DTO.
func PlacementFromModel(pm store.PlacementMetric) PlacementDTO {
	return PlacementDTO{
		Placement:  pm.Placement,
		Percentage: pm.Percentage,
		Metrics:    metricsDTO(pm.Impressions, pm.Clicks, pm.Cost, pm.Sales, pm.Orders, 0),
	}
}

// ChangeSetSummaryDTO is a change-set header for listings.
type ChangeSetSummaryDTO struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name,omitempty"`
	Status     string     `json:"status"`
	ItemCount  int        `json:"item_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	AppliedAt  *time.Time `json:"applied_at,omitempty"`
}

// ChangeSetSummaryFromModel converts a store summary into its DTO.
func ChangeSetSummaryFromModel(s store.ChangeSetSummary) ChangeSetSummaryDTO {
	return ChangeSetSummaryDTO{
		ID:         s.ID,
		Name:       s.Name,
		Status:     s.Status,
		ItemCount:  s.ItemCount,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		ExportedAt: s.ExportedAt,
		AppliedAt:  s.AppliedAt,
	}
}

// ChangeSetDTO is a change set with its items.
type ChangeSetDTO struct {
	ID         uint             `json:"id"`
	Name       string           `json:"name,omitempty"`
	Status     string           `json:"status"`
	Items      []changeset.Item `json:"items"`
	ExportedAt *time.Time       `json:"exported_at,omitempty"`
	AppliedAt  *time.Time       `json:"applied_at,omitempty"`
}

// ChangeSetFromSet converts the service representation into its DTO.
func ChangeSetFromSet(set *changeset.Set) ChangeSetDTO {
	return ChangeSetDTO{
		ID:         set.ID,
		Name:       set.Name,
		Status:     set.Status,
		Items:      set.Items,
		ExportedAt: set.ExportedAt,
		AppliedAt:  set.AppliedAt,
	}
}

// CreateChangeSetRequest is the creation payload.
type CreateChangeSetRequest struct {
	Name  string           `json:"name"`
	Items []changeset.Item `json:"items"`
}

// AlertDTO is the API representation of an alert.
type AlertDTO struct {
	ID          uint           `json:"id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	CampaignID  uint           `json:"campaign_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsResolved  bool           `json:"is_resolved"`
	TriggeredAt time.Time      `json:"triggered_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
}

// AlertFromModel converts a stored alert into its DTO.
func AlertFromModel(a store.Alert) AlertDTO {
	return AlertDTO{
		ID:          a.ID,
		Type:        a.Type,
		Severity:    a.Severity,
		Title:       a.Title,
		Message:     a.Message,
		CampaignID:  a.CampaignID,
		Metadata:    a.Metadata(),
		IsResolved:  a.IsResolved,
		TriggeredAt: a.TriggeredAt,
		ResolvedAt:  a.ResolvedAt,
	}
}

// AlertsResponse is the paginated alert listing.
type AlertsResponse struct {
	Items []AlertDTO `json:"items"`
	Total int64      `json:"total"`
}

// ReportBatchDTO reports one bulk upload with ingestion counts.
type ReportBatchDTO struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	OriginalFilename string     `json:"original_filename"`
	Status           string     `json:"status"`
	RowCount         int        `json:"row_count"`
	CampaignCount    int        `json:"campaign_count"`
	KeywordCount     int        `json:"keyword_count"`
	SearchTermCount  int        `json:"search_term_count"`
	IngestedAt       *time.Time `json:"ingested_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ReportBatchFromModel converts a stored batch into its DTO.
func ReportBatchFromModel(b store.ReportBatch) ReportBatchDTO {
	return ReportBatchDTO{
		ID:               b.ID,
		Name:             b.Name,
		OriginalFilename: b.OriginalFilename,
		Status:           b.Status,
		RowCount:         b.RowCount,
		CampaignCount:    b.CampaignCount,
		KeywordCount:     b.KeywordCount,
		SearchTermCount:  b.SearchTermCount,
		IngestedAt:       b.IngestedAt,
		CreatedAt:        b.CreatedAt,
	}
}

// ReportBatchesResponse is the paginated batch listing.
type ReportBatchesResponse struct {
	Items []ReportBatchDTO `json:"items"`
	Total int64            `json:"total"`
}

// UploadResponse reports the ingestion job started for an upload.
type UploadResponse struct {
	BatchID   uint      `json:"batch_id"`
	JobID     string    `json:"job_id"`
	StartedAt time.Time `json:"started_at"`
}

// IngestStatusResponse describes the active ingestion job, if any.
type IngestStatusResponse struct {
	Running   bool   `json:"running"`
	JobID     string `json:"job_id,omitempty"`
	BatchID   uint   `json:"batch_id,omitempty"`
	State     string `json:"state,omitempty"`
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
