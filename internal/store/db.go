package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"ppc-dashboard/backend/internal/changeset"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&Portfolio{}, &Campaign{}, &AdGroup{}, &Keyword{},
		&KeywordMetric{}, &CampaignMetric{}, &SearchTerm{}, &PlacementMetric{},
		&ChangeSet{}, &ChangeSetItem{}, &Alert{}, &ReportBatch{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_keyword_metrics_keyword_date ON keyword_metrics(keyword_id, date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_campaign_metrics_campaign_date ON campaign_metrics(campaign_id, date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_search_terms_keyword_term ON search_terms(keyword_id, search_term)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_placement_metrics_campaign_placement ON placement_metrics(campaign_id, placement)",
		"CREATE INDEX IF NOT EXISTS idx_keywords_syntax_match ON keywords(syntax_group, match_type)",
		"CREATE INDEX IF NOT EXISTS idx_alerts_type_resolved ON alerts(type, is_resolved, triggered_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpsertPortfolio inserts or refreshes a portfolio by its platform ID.
func (d *Database) UpsertPortfolio(p *Portfolio) error {
	if p == nil {
		return errors.New("portfolio is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "amazon_portfolio_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "state", "updated_at"}),
	}).Create(p).Error
}

// UpsertCampaign inserts or refreshes a campaign by its platform ID.
func (d *Database) UpsertCampaign(c *Campaign) error {
	if c == nil {
		return errors.New("campaign is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "amazon_campaign_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "portfolio", "campaign_type", "targeting_type", "state",
			"daily_budget", "bidding_strategy", "updated_at",
		}),
	}).Create(c).Error
}

// UpsertAdGroup inserts or refreshes an ad group by its platform ID.
func (d *Database) UpsertAdGroup(g *AdGroup) error {
	if g == nil {
		return errors.New("ad group is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "amazon_ad_group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"campaign_id", "name", "campaign_name", "default_bid", "state", "updated_at",
		}),
	}).Create(g).Error
}

// UpsertKeyword inserts or refreshes a keyword by its platform ID. The
// syntax label travels with the row; it was computed from the text at
// ingestion and is overwritten only by re-ingestion.
func (d *Database) UpsertKeyword(k *Keyword) error {
	if k == nil {
		return errors.New("keyword is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "amazon_keyword_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ad_group_id", "campaign_id", "keyword_text", "match_type",
			"bid", "state", "syntax_group", "updated_at",
		}),
	}).Create(k).Error
}

// UpsertSearchTerm inserts or refreshes a search term by keyword and text.
func (d *Database) UpsertSearchTerm(st *SearchTerm) error {
	if st == nil {
		return errors.New("search term is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword_id"}, {Name: "search_term"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"campaign_id", "syntax_group", "impressions", "clicks", "cost",
			"sales", "orders", "units", "updated_at",
		}),
	}).Create(st).Error
}

// UpsertPlacementMetric inserts or refreshes placement performance.
func (d *Database) UpsertPlacementMetric(pm *PlacementMetric) error {
	if pm == nil {
		return errors.New("placement metric is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}, {Name: "placement"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"percentage", "impressions", "clicks", "cost", "sales", "orders", "updated_at",
		}),
	}).Create(pm).Error
}

// AddKeywordMetric upserts one day of keyword performance.
func (d *Database) AddKeywordMetric(m *KeywordMetric) error {
	if m == nil {
		return errors.New("keyword metric is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"impressions", "clicks", "cost", "sales", "orders",
		}),
	}).Create(m).Error
}

// AddCampaignMetric upserts one day of campaign performance.
func (d *Database) AddCampaignMetric(m *CampaignMetric) error {
	if m == nil {
		return errors.New("campaign metric is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"impressions", "clicks", "cost", "sales", "orders", "units",
		}),
	}).Create(m).Error
}

// CampaignQuery filters and paginates campaign listings.
type CampaignQuery struct {
	Since     time.Time
	Portfolio string
	State     string
	Offset    int
	Limit     int
}

// CampaignRow is a campaign with metrics summed over the query window.
type CampaignRow struct {
	Campaign
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	Units       int
}

// ListCampaigns returns campaigns with windowed metric totals.
func (d *Database) ListCampaigns(opts CampaignQuery) ([]CampaignRow, int64, error) {
	base := d.gorm.Model(&Campaign{})
	if p := strings.TrimSpace(opts.Portfolio); p != "" {
		base = base.Where("portfolio = ?", p)
	}
	if s := strings.TrimSpace(opts.State); s != "" {
		base = base.Where("LOWER(state) = ?", strings.ToLower(s))
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []Campaign
	q := base.Order("id ASC").Offset(opts.Offset)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]CampaignRow, 0, len(campaigns))
	for _, c := range campaigns {
		row := CampaignRow{Campaign: c}
		totals, err := d.campaignTotals(c.ID, opts.Since)
		if err != nil {
			return nil, 0, err
		}
		row.Impressions = totals.Impressions
		row.Clicks = totals.Clicks
		row.Cost = totals.Cost
		row.Sales = totals.Sales
		row.Orders = totals.Orders
		row.Units = totals.Units
		rows = append(rows, row)
	}
	return rows, total, nil
}

type metricTotals struct {
	Impressions int
	Clicks      int
	Cost        float64
	Sales       float64
	Orders      int
	Units       int
}

func (d *Database) campaignTotals(campaignID uint, since time.Time) (metricTotals, error) {
	var totals metricTotals
	err := d.gorm.Model(&CampaignMetric{}).
		Select("COALESCE(SUM(impressions),0) AS impressions, COALESCE(SUM(clicks),0) AS clicks, COALESCE(SUM(cost),0) AS cost, COALESCE(SUM(sales),0) AS sales, COALESCE(SUM(orders),0) AS orders, COALESCE(SUM(units),0) AS units").
		Where("campaign_id = ? AND date >= ?", campaignID, since).
		Scan(&totals).Error
	return totals, err
}

// GetCampaign fetches a campaign with windowed totals.
func (d *Database) GetCampaign(id uint, since time.Time) (*CampaignRow, error) {
	var c Campaign
	if err := d.gorm.First(&c, id).Error; err != nil {
		return nil, err
	}
	totals, err := d.campaignTotals(id, since)
	if err != nil {
		return nil, err
	}
	return &CampaignRow{
		Campaign:    c,
		Impressions: totals.Impressions,
		Clicks:      totals.Clicks,
		Cost:        totals.Cost,
		Sales:       totals.Sales,
		Orders:      totals.Orders,
		Units:       totals.Units,
	}, nil
}

// KeywordQuery filters keyword rows for listings and aggregation input.
type KeywordQuery struct {
	Since         time.Time
	MatchType     string
	SyntaxGroup   string
	Portfolio     string
	CampaignState string
	CampaignID    uint
	LabeledOnly   bool
	Offset        int
	Limit         int
}

// KeywordRow is a keyword with metrics summed over the query window.
type KeywordRow struct {
	ID              uint
	AmazonKeywordID string
	CampaignID      uint
	CampaignName    string
	AdGroupID       uint
	AdGroupName     string
	KeywordText     string
	MatchType       string
	Bid             float64
	State           string
	SyntaxGroup     string
	Impressions     int
	Clicks          int
	Cost            float64
	Sales           float64
	Orders          int
}

// ListKeywordRows returns keywords joined to campaign context with windowed
// metric totals. This is the single fetch feeding the group and root
// aggregators; filters apply here, before any folding.
func (d *Database) ListKeywordRows(opts KeywordQuery) ([]KeywordRow, error) {
	query := `
		SELECT k.id,
		       k.amazon_keyword_id,
		       k.campaign_id,
		       c.name AS campaign_name,
		       k.ad_group_id,
		       g.name AS ad_group_name,
		       k.keyword_text,
		       k.match_type,
		       k.bid,
		       k.state,
		       k.syntax_group,
		       COALESCE(SUM(m.impressions),0) AS impressions,
		       COALESCE(SUM(m.clicks),0) AS clicks,
		       COALESCE(SUM(m.cost),0) AS cost,
		       COALESCE(SUM(m.sales),0) AS sales,
		       COALESCE(SUM(m.orders),0) AS orders
		FROM keywords k
		JOIN campaigns c ON c.id = k.campaign_id
		LEFT JOIN ad_groups g ON g.id = k.ad_group_id
		LEFT JOIN keyword_metrics m ON m.keyword_id = k.id AND m.date >= ?`

	where := []string{"1=1"}
	args := []any{opts.Since}
	if opts.LabeledOnly {
		where = append(where, "k.syntax_group <> ''")
	}
	if mt := strings.TrimSpace(opts.MatchType); mt != "" {
		where = append(where, "k.match_type = ?")
		args = append(args, mt)
	}
	if sg := strings.TrimSpace(opts.SyntaxGroup); sg != "" {
		where = append(where, "k.syntax_group = ?")
		args = append(args, sg)
	}
	if p := strings.TrimSpace(opts.Portfolio); p != "" {
		where = append(where, "c.portfolio = ?")
		args = append(args, p)
	}
	if cs := strings.TrimSpace(opts.CampaignState); cs != "" {
		where = append(where, "LOWER(c.state) = ?")
		args = append(args, strings.ToLower(cs))
	}
	if opts.CampaignID > 0 {
		where = append(where, "k.campaign_id = ?")
		args = append(args, opts.CampaignID)
	}

	query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	query += "\n\t\tGROUP BY k.id\n\t\tORDER BY k.id ASC"
	if opts.Limit > 0 {
		query += "\n\t\tLIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	var rows []KeywordRow
	if err := d.gorm.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSearchTerms returns search terms for a campaign ordered by cost.
func (d *Database) ListSearchTerms(campaignID uint) ([]SearchTerm, error) {
	var terms []SearchTerm
	if err := d.gorm.Where("campaign_id = ?", campaignID).Order("cost DESC").Find(&terms).Error; err != nil {
		return nil, err
	}
	return terms, nil
}

// ListPlacements returns placement performance for a campaign.
func (d *Database) ListPlacements(campaignID uint) ([]PlacementMetric, error) {
	var placements []PlacementMetric
	if err := d.gorm.Where("campaign_id = ?", campaignID).Order("placement ASC").Find(&placements).Error; err != nil {
		return nil, err
	}
	return placements, nil
}

// ListPortfolioNames returns the distinct portfolio names in use.
func (d *Database) ListPortfolioNames() ([]string, error) {
	var names []string
	if err := d.gorm.Model(&Campaign{}).
		Where("portfolio <> ''").
		Distinct("portfolio").
		Order("portfolio ASC").
		Pluck("portfolio", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// CountCampaigns returns the campaign count.
func (d *Database) CountCampaigns() (int64, error) {
	var count int64
	if err := d.gorm.Model(&Campaign{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountKeywords returns the keyword count.
func (d *Database) CountKeywords() (int64, error) {
	var count int64
	if err := d.gorm.Model(&Keyword{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateChangeSet persists a new change set in DRAFT with its items.
func (d *Database) CreateChangeSet(name string, items []changeset.Item) (*changeset.Set, error) {
	model := &ChangeSet{Name: name, Status: changeset.StatusDraft}
	for _, item := range items {
		row := ChangeSetItem{
			EntityType:       item.EntityType,
			EntityID:         item.EntityID,
			EntityName:       item.EntityName,
			CampaignName:     item.CampaignName,
			AdGroupName:      item.AdGroupName,
			AmazonCampaignID: item.AmazonCampaignID,
			AmazonAdGroupID:  item.AmazonAdGroupID,
			AmazonKeywordID:  item.AmazonKeywordID,
			MatchType:        item.MatchType,
		}
		row.SetChanges(item.Changes)
		row.SetPreviousValues(item.PreviousValues)
		model.Items = append(model.Items, row)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gorm.Create(model).Error; err != nil {
		return nil, err
	}
	return changeSetFromModel(model), nil
}

// GetChangeSet loads a change set with its items.
func (d *Database) GetChangeSet(id uint) (*changeset.Set, error) {
	model, err := d.getChangeSetModel(id)
	if err != nil {
		return nil, err
	}
	return changeSetFromModel(model), nil
}

func (d *Database) getChangeSetModel(id uint) (*ChangeSet, error) {
	var model ChangeSet
	if err := d.gorm.Preload("Items").First(&model, id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func changeSetFromModel(model *ChangeSet) *changeset.Set {
	set := &changeset.Set{
		ID:         model.ID,
		Name:       model.Name,
		Status:     model.Status,
		ExportedAt: model.ExportedAt,
		AppliedAt:  model.AppliedAt,
	}
	for _, row := range model.Items {
		set.Items = append(set.Items, changeset.Item{
			EntityType:       row.EntityType,
			EntityID:         row.EntityID,
			EntityName:       row.EntityName,
			CampaignName:     row.CampaignName,
			AdGroupName:      row.AdGroupName,
			AmazonCampaignID: row.AmazonCampaignID,
			AmazonAdGroupID:  row.AmazonAdGroupID,
			AmazonKeywordID:  row.AmazonKeywordID,
			MatchType:        row.MatchType,
			Changes:          row.Changes(),
			PreviousValues:   row.PreviousValues(),
		})
	}
	return set
}

// UpdateChangeSetStatus moves a change set to the given status, stamping the
// matching timestamp and recording the error message for FAILED.
func (d *Database) UpdateChangeSetStatus(id uint, status string, errorMessage string) error {
	updates := map[string]any{"status": status, "error_message": errorMessage}
	now := time.Now().UTC()
	switch status {
	case changeset.StatusExported:
		updates["exported_at"] = &now
	case changeset.StatusApplied:
		updates["applied_at"] = &now
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Model(&ChangeSet{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteChangeSet removes a change set and its items.
func (d *Database) DeleteChangeSet(id uint) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("change_set_id = ?", id).Delete(&ChangeSetItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ChangeSet{}, id).Error
	})
}

// ChangeSetSummary is a change set header with its item count.
type ChangeSetSummary struct {
	ChangeSet
	ItemCount int
}

// ListChangeSets returns change sets newest first with item counts.
func (d *Database) ListChangeSets(offset, limit int) ([]ChangeSetSummary, int64, error) {
	var total int64
	if err := d.gorm.Model(&ChangeSet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&ChangeSet{}).Order("created_at DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	var sets []ChangeSet
	if err := query.Find(&sets).Error; err != nil {
		return nil, 0, err
	}
	summaries := make([]ChangeSetSummary, 0, len(sets))
	for _, set := range sets {
		var count int64
		if err := d.gorm.Model(&ChangeSetItem{}).Where("change_set_id = ?", set.ID).Count(&count).Error; err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, ChangeSetSummary{ChangeSet: set, ItemCount: int(count)})
	}
	return summaries, total, nil
}

// UpdateCampaignFields writes only the supplied columns on a campaign.
func (d *Database) UpdateCampaignFields(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.gorm.Model(&Campaign{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("campaign %d not found", id)
	}
	return nil
}

// UpdateKeywordFields writes only the supplied columns on a keyword.
func (d *Database) UpdateKeywordFields(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.gorm.Model(&Keyword{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("keyword %d not found", id)
	}
	return nil
}

// CreateAlert stores a new alert.
func (d *Database) CreateAlert(alert *Alert) error {
	if alert == nil {
		return errors.New("alert is nil")
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now().UTC()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(alert).Error
}

// HasRecentUnresolvedAlert reports whether an unresolved alert of the same
// type exists for the campaign since the cutoff.
func (d *Database) HasRecentUnresolvedAlert(alertType string, campaignID uint, since time.Time) (bool, error) {
	var count int64
	err := d.gorm.Model(&Alert{}).
		Where("type = ? AND campaign_id = ? AND is_resolved = ? AND triggered_at >= ?", alertType, campaignID, false, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAlerts returns alerts newest first, optionally unresolved only.
func (d *Database) ListAlerts(unresolvedOnly bool, offset, limit int) ([]Alert, int64, error) {
	base := d.gorm.Model(&Alert{})
	if unresolvedOnly {
		base = base.Where("is_resolved = ?", false)
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := base.Order("triggered_at DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	var alerts []Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// ResolveAlert marks an alert resolved.
func (d *Database) ResolveAlert(id uint) error {
	now := time.Now().UTC()
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.gorm.Model(&Alert{}).Where("id = ?", id).Updates(map[string]any{
		"is_resolved": true,
		"resolved_at": &now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("alert %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// AlertCampaignRow joins an enabled campaign with its latest daily metric
// for the alert detector.
type AlertCampaignRow struct {
	Campaign Campaign
	Metric   *CampaignMetric
}

// ListEnabledCampaignsWithLatestMetric feeds the alert detector.
func (d *Database) ListEnabledCampaignsWithLatestMetric() ([]AlertCampaignRow, error) {
	var campaigns []Campaign
	if err := d.gorm.Where("LOWER(state) = ?", "enabled").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	rows := make([]AlertCampaignRow, 0, len(campaigns))
	for _, c := range campaigns {
		var metric CampaignMetric
		err := d.gorm.Where("campaign_id = ?", c.ID).Order("date DESC").First(&metric).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rows = append(rows, AlertCampaignRow{Campaign: c})
				continue
			}
			return nil, err
		}
		rows = append(rows, AlertCampaignRow{Campaign: c, Metric: &metric})
	}
	return rows, nil
}

// CreateReportBatch records a new bulk report upload.
func (d *Database) CreateReportBatch(name, filename string) (*ReportBatch, error) {
	batch := &ReportBatch{Name: name, OriginalFilename: filename, Status: "pending"}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gorm.Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateReportBatch refreshes ingestion status and counts for a batch.
func (d *Database) UpdateReportBatch(batchID uint, status string, rowCount, campaigns, keywords, searchTerms int) error {
	updates := map[string]any{
		"status":            status,
		"row_count":         rowCount,
		"campaign_count":    campaigns,
		"keyword_count":     keywords,
		"search_term_count": searchTerms,
	}
	if status == "completed" {
		now := time.Now().UTC()
		updates["ingested_at"] = &now
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Model(&ReportBatch{}).Where("id = ?", batchID).Updates(updates).Error
}

// ListReportBatches returns report batches newest first.
func (d *Database) ListReportBatches(offset, limit int) ([]ReportBatch, int64, error) {
	var total int64
	if err := d.gorm.Model(&ReportBatch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&ReportBatch{}).Order("created_at DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	var batches []ReportBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// GetReportBatch fetches a report batch by ID.
func (d *Database) GetReportBatch(batchID uint) (*ReportBatch, error) {
	var batch ReportBatch
	if err := d.gorm.First(&batch, batchID).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// LookupCampaignID resolves an internal campaign ID from the platform ID.
func (d *Database) LookupCampaignID(amazonCampaignID string) (uint, error) {
	var c Campaign
	if err := d.gorm.Select("id").Where("amazon_campaign_id = ?", amazonCampaignID).First(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// LookupKeywordID resolves an internal keyword ID from the platform ID.
func (d *Database) LookupKeywordID(amazonKeywordID string) (uint, error) {
	var k Keyword
	if err := d.gorm.Select("id").Where("amazon_keyword_id = ?", amazonKeywordID).First(&k).Error; err != nil {
		return 0, err
	}
	return k.ID, nil
}

// LookupAdGroupID resolves an internal ad group ID from the platform ID.
func (d *Database) LookupAdGroupID(amazonAdGroupID string) (uint, error) {
	var g AdGroup
	if err := d.gorm.Select("id").Where("amazon_ad_group_id = ?", amazonAdGroupID).First(&g).Error; err != nil {
		return 0, err
	}
	return g.ID, nil
}
