package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ppc-dashboard/backend/internal/report"
	"ppc-dashboard/backend/internal/store"
)

// progressInterval controls how often ingestion progress is broadcast.
const progressInterval = 250

// ingestJob tracks the state of a running report ingestion.
type ingestJob struct {
	id        string
	batchID   uint
	cancel    context.CancelFunc
	startedAt time.Time
	total     int
}

// startIngestion launches an asynchronous ingestion of the parsed report.
// The caller must hold s.jobMu.
func (s *Server) startIngestion(batch *store.ReportBatch, path string, reportDate time.Time) (*ingestJob, error) {
	if s.activeJob != nil {
		return nil, errors.New("ingestion already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &ingestJob{
		id:        uuid.NewString(),
		batchID:   batch.ID,
		cancel:    cancel,
		startedAt: time.Now().UTC(),
	}
	s.activeJob = job
	go s.runIngestion(ctx, job, batch, path, reportDate)
	return job, nil
}

func (s *Server) runIngestion(ctx context.Context, job *ingestJob, batch *store.ReportBatch, path string, reportDate time.Time) {
	defer func() {
		_ = os.Remove(path)
		s.jobMu.Lock()
		s.activeJob = nil
		s.jobMu.Unlock()
	}()

	fail := func(err error) {
		logrus.WithError(err).WithField("batch_id", batch.ID).Error("report ingestion failed")
		if dbErr := s.db.UpdateReportBatch(batch.ID, "failed", 0, 0, 0, 0); dbErr != nil {
			logrus.WithError(dbErr).Warn("update report batch after failure")
		}
		s.ingestNotifier.Broadcast(IngestEvent{
			Type:    "error",
			JobID:   job.id,
			BatchID: batch.ID,
			Message: err.Error(),
		})
	}

	f, err := os.Open(path)
	if err != nil {
		fail(fmt.Errorf("open report file: %w", err))
		return
	}
	parsed, err := report.Parse(f, s.classifier)
	f.Close()
	if err != nil {
		fail(fmt.Errorf("parse report: %w", err))
		return
	}

	job.total = len(parsed.Portfolios) + len(parsed.Campaigns) + len(parsed.AdGroups) +
		len(parsed.Keywords) + len(parsed.SearchTerms) + len(parsed.Placements)

	s.ingestNotifier.Broadcast(IngestEvent{
		Type:    "started",
		JobID:   job.id,
		BatchID: batch.ID,
		Total:   job.total,
		Message: fmt.Sprintf("ingesting %d rows", job.total),
	})

	processed := 0
	step := func() bool {
		processed++
		if processed%progressInterval == 0 {
			s.ingestNotifier.Broadcast(IngestEvent{
				Type:      "progress",
				JobID:     job.id,
				BatchID:   batch.ID,
				Total:     job.total,
				Processed: processed,
			})
		}
		return ctx.Err() == nil
	}

	if err := s.persistReport(parsed, reportDate, step); err != nil {
		if errors.Is(err, context.Canceled) {
			fail(errors.New("ingestion cancelled"))
			return
		}
		fail(err)
		return
	}

	if err := s.db.UpdateReportBatch(batch.ID, "completed", parsed.RowCount,
		len(parsed.Campaigns), len(parsed.Keywords), len(parsed.SearchTerms)); err != nil {
		fail(fmt.Errorf("update report batch: %w", err))
		return
	}

	logrus.WithFields(logrus.Fields{
		"batch_id":     batch.ID,
		"rows":         parsed.RowCount,
		"campaigns":    len(parsed.Campaigns),
		"keywords":     len(parsed.Keywords),
		"search_terms": len(parsed.SearchTerms),
	}).Info("report ingestion completed")

	s.ingestNotifier.Broadcast(IngestEvent{
		Type:      "completed",
		JobID:     job.id,
		BatchID:   batch.ID,
		Total:     job.total,
		Processed: processed,
		Message:   "ingestion complete",
	})
}

// persistReport writes parsed records in dependency order: parents before
// children so platform-ID lookups resolve.
func (s *Server) persistReport(parsed *report.Report, reportDate time.Time, step func() bool) error {
	for _, p := range parsed.Portfolios {
		if err := s.db.UpsertPortfolio(&store.Portfolio{
			AmazonPortfolioID: p.AmazonPortfolioID,
			Name:              p.Name,
			State:             p.State,
		}); err != nil {
			return fmt.Errorf("upsert portfolio %s: %w", p.Name, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	for _, c := range parsed.Campaigns {
		model := &store.Campaign{
			AmazonCampaignID: c.AmazonCampaignID,
			Name:             c.Name,
			Portfolio:        c.Portfolio,
			CampaignType:     "sponsoredProducts",
			TargetingType:    c.TargetingType,
			State:            c.State,
			DailyBudget:      c.DailyBudget,
			BiddingStrategy:  c.BiddingStrategy,
		}
		if err := s.db.UpsertCampaign(model); err != nil {
			return fmt.Errorf("upsert campaign %s: %w", c.Name, err)
		}
		campaignID, err := s.db.LookupCampaignID(c.AmazonCampaignID)
		if err != nil {
			return fmt.Errorf("resolve campaign %s: %w", c.AmazonCampaignID, err)
		}
		if err := s.db.AddCampaignMetric(&store.CampaignMetric{
			CampaignID:  campaignID,
			Date:        reportDate,
			Impressions: c.Impressions,
			Clicks:      c.Clicks,
			Cost:        c.Cost,
			Sales:       c.Sales,
			Orders:      c.Orders,
			Units:       c.Units,
		}); err != nil {
			return fmt.Errorf("store campaign metrics %s: %w", c.Name, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	for _, g := range parsed.AdGroups {
		campaignID, err := s.db.LookupCampaignID(g.AmazonCampaignID)
		if err != nil {
			return fmt.Errorf("resolve campaign for ad group %s: %w", g.Name, err)
		}
		if err := s.db.UpsertAdGroup(&store.AdGroup{
			AmazonAdGroupID: g.AmazonAdGroupID,
			CampaignID:      campaignID,
			Name:            g.Name,
			CampaignName:    g.CampaignName,
			DefaultBid:      g.DefaultBid,
			State:           g.State,
		}); err != nil {
			return fmt.Errorf("upsert ad group %s: %w", g.Name, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	for _, k := range parsed.Keywords {
		campaignID, err := s.db.LookupCampaignID(k.AmazonCampaignID)
		if err != nil {
			return fmt.Errorf("resolve campaign for keyword %q: %w", k.KeywordText, err)
		}
		adGroupID, err := s.db.LookupAdGroupID(k.AmazonAdGroupID)
		if err != nil {
			return fmt.Errorf("resolve ad group for keyword %q: %w", k.KeywordText, err)
		}
		if err := s.db.UpsertKeyword(&store.Keyword{
			AmazonKeywordID: k.AmazonKeywordID,
			AdGroupID:       adGroupID,
			CampaignID:      campaignID,
			KeywordText:     k.KeywordText,
			MatchType:       k.MatchType,
			Bid:             k.Bid,
			State:           k.State,
			SyntaxGroup:     k.SyntaxGroup,
		}); err != nil {
			return fmt.Errorf("upsert keyword %q: %w", k.KeywordText, err)
		}
		keywordID, err := s.db.LookupKeywordID(k.AmazonKeywordID)
		if err != nil {
			return fmt.Errorf("resolve keyword %q: %w", k.KeywordText, err)
		}
		if err := s.db.AddKeywordMetric(&store.KeywordMetric{
			KeywordID:   keywordID,
			Date:        reportDate,
			Impressions: k.Impressions,
			Clicks:      k.Clicks,
			Cost:        k.Cost,
			Sales:       k.Sales,
			Orders:      k.Orders,
		}); err != nil {
			return fmt.Errorf("store keyword metrics %q: %w", k.KeywordText, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	for _, st := range parsed.SearchTerms {
		campaignID, err := s.db.LookupCampaignID(st.AmazonCampaignID)
		if err != nil {
			return fmt.Errorf("resolve campaign for search term %q: %w", st.SearchTerm, err)
		}
		keywordID, err := s.db.LookupKeywordID(st.AmazonKeywordID)
		if err != nil {
			return fmt.Errorf("resolve keyword for search term %q: %w", st.SearchTerm, err)
		}
		if err := s.db.UpsertSearchTerm(&store.SearchTerm{
			KeywordID:   keywordID,
			CampaignID:  campaignID,
			SearchTerm:  st.SearchTerm,
			SyntaxGroup: st.SyntaxGroup,
			Impressions: st.Impressions,
			Clicks:      st.Clicks,
			Cost:        st.Cost,
			Sales:       st.Sales,
			Orders:      st.Orders,
			Units:       st.Units,
		}); err != nil {
			return fmt.Errorf("upsert search term %q: %w", st.SearchTerm, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	for _, pm := range parsed.Placements {
		campaignID, err := s.db.LookupCampaignID(pm.AmazonCampaignID)
		if err != nil {
			return fmt.Errorf("resolve campaign for placement %s: %w", pm.Placement, err)
		}
		if err := s.db.UpsertPlacementMetric(&store.PlacementMetric{
			CampaignID:  campaignID,
			Placement:   pm.Placement,
			Percentage:  pm.Percentage,
			Impressions: pm.Impressions,
			Clicks:      pm.Clicks,
			Cost:        pm.Cost,
			Sales:       pm.Sales,
			Orders:      pm.Orders,
		}); err != nil {
			return fmt.Errorf("upsert placement %s: %w", pm.Placement, err)
		}
		if !step() {
			return context.Canceled
		}
	}

	return nil
}
