// Package alerts detects performance and budget conditions on enabled
// campaigns and records them, skipping duplicates of recent unresolved
// alerts.
package alerts

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ppc-dashboard/backend/internal/metrics"
	"ppc-dashboard/backend/internal/store"
)

// Alert types and severities.
const (
	TypeHighAcos       = "HIGH_ACOS"
	TypeLowRoas        = "LOW_ROAS"
	TypeBudgetPacing   = "BUDGET_PACING"
	TypeBudgetExceeded = "BUDGET_EXCEEDED"

	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// dedupeWindow suppresses repeat alerts of the same type for the same
// campaign while an unresolved one from the last day exists.
const dedupeWindow = 24 * time.Hour

// Candidate is one detected condition before persistence.
type Candidate struct {
	Type       string
	Severity   string
	Title      string
	Message    string
	CampaignID uint
	Metadata   map[string]any
}

// CampaignStats is the detector's input: current campaign settings plus the
// latest daily metric.
type CampaignStats struct {
	CampaignID  uint
	Name        string
	DailyBudget float64
	TargetAcos  *float64
	TargetRoas  *float64
	Acos        float64
	Roas        float64
	Cost        float64
}

// Evaluate applies the alert rules to one campaign's stats. Pure; the
// caller handles dedupe and persistence.
func Evaluate(stats CampaignStats) []Candidate {
	var out []Candidate

	if stats.TargetAcos != nil && *stats.TargetAcos > 0 && stats.Acos > *stats.TargetAcos*1.2 {
		severity := SeverityWarning
		if stats.Acos > *stats.TargetAcos*1.5 {
			severity = SeverityCritical
		}
		out = append(out, Candidate{
			Type:       TypeHighAcos,
			Severity:   severity,
			Title:      fmt.Sprintf("High ACOS: %s", stats.Name),
			Message:    fmt.Sprintf("Campaign ACOS (%.1f%%) is above target (%.1f%%). Consider reducing bids or pausing underperforming keywords.", stats.Acos, *stats.TargetAcos),
			CampaignID: stats.CampaignID,
			Metadata: map[string]any{
				"campaignId":   stats.CampaignID,
				"campaignName": stats.Name,
				"currentAcos":  stats.Acos,
				"targetAcos":   *stats.TargetAcos,
			},
		})
	}

	if stats.TargetRoas != nil && *stats.TargetRoas > 0 && stats.Roas < *stats.TargetRoas*0.8 {
		severity := SeverityWarning
		if stats.Roas < *stats.TargetRoas*0.5 {
			severity = SeverityCritical
		}
		out = append(out, Candidate{
			Type:       TypeLowRoas,
			Severity:   severity,
			Title:      fmt.Sprintf("Low ROAS: %s", stats.Name),
			Message:    fmt.Sprintf("Campaign ROAS (%.2fx) is below target (%.2fx). Review your targeting and bid strategy.", stats.Roas, *stats.TargetRoas),
			CampaignID: stats.CampaignID,
			Metadata: map[string]any{
				"campaignId":   stats.CampaignID,
				"campaignName": stats.Name,
				"currentRoas":  stats.Roas,
				"targetRoas":   *stats.TargetRoas,
			},
		})
	}

	pace := metrics.BudgetPacing(stats.Cost, stats.DailyBudget)
	if pace > 150 {
		severity := SeverityWarning
		if pace > 200 {
			severity = SeverityCritical
		}
		out = append(out, Candidate{
			Type:       TypeBudgetPacing,
			Severity:   severity,
			Title:      fmt.Sprintf("Budget Overspending: %s", stats.Name),
			Message:    fmt.Sprintf("Campaign is pacing at %.0f%% of daily budget ($%.2f). Budget may be exhausted early.", pace, stats.DailyBudget),
			CampaignID: stats.CampaignID,
			Metadata: map[string]any{
				"campaignId":     stats.CampaignID,
				"campaignName":   stats.Name,
				"pacePercentage": pace,
				"dailyBudget":    stats.DailyBudget,
			},
		})
	}

	if stats.DailyBudget > 0 && stats.Cost > stats.DailyBudget*0.9 {
		severity := SeverityWarning
		if stats.Cost > stats.DailyBudget {
			severity = SeverityCritical
		}
		out = append(out, Candidate{
			Type:       TypeBudgetExceeded,
			Severity:   severity,
			Title:      fmt.Sprintf("Budget Alert: %s", stats.Name),
			Message:    fmt.Sprintf("Campaign has spent %.0f%% of its daily budget ($%.2f / $%.2f).", stats.Cost/stats.DailyBudget*100, stats.Cost, stats.DailyBudget),
			CampaignID: stats.CampaignID,
			Metadata: map[string]any{
				"campaignId":   stats.CampaignID,
				"campaignName": stats.Name,
				"spent":        stats.Cost,
				"budget":       stats.DailyBudget,
			},
		})
	}

	return out
}

// Detector runs the rules over the store and persists new alerts.
type Detector struct {
	db *store.Database
}

// NewDetector constructs a detector over the database.
func NewDetector(db *store.Database) *Detector {
	return &Detector{db: db}
}

// CheckAndCreate evaluates all enabled campaigns and stores alerts that pass
// the dedupe window. Returns the number of alerts created.
func (d *Detector) CheckAndCreate() (int, error) {
	rows, err := d.db.ListEnabledCampaignsWithLatestMetric()
	if err != nil {
		return 0, fmt.Errorf("load campaigns for alert check: %w", err)
	}

	created := 0
	cutoff := time.Now().UTC().Add(-dedupeWindow)
	for _, row := range rows {
		if row.Metric == nil {
			continue
		}
		stats := CampaignStats{
			CampaignID:  row.Campaign.ID,
			Name:        row.Campaign.Name,
			DailyBudget: row.Campaign.DailyBudget,
			TargetAcos:  row.Campaign.TargetAcos,
			TargetRoas:  row.Campaign.TargetRoas,
			Acos:        metrics.ACOS(row.Metric.Cost, row.Metric.Sales),
			Roas:        metrics.ROAS(row.Metric.Sales, row.Metric.Cost),
			Cost:        row.Metric.Cost,
		}
		for _, candidate := range Evaluate(stats) {
			exists, err := d.db.HasRecentUnresolvedAlert(candidate.Type, candidate.CampaignID, cutoff)
			if err != nil {
				return created, fmt.Errorf("alert dedupe check: %w", err)
			}
			if exists {
				continue
			}
			alert := &store.Alert{
				Type:        candidate.Type,
				Severity:    candidate.Severity,
				Title:       candidate.Title,
				Message:     candidate.Message,
				CampaignID:  candidate.CampaignID,
				TriggeredAt: time.Now().UTC(),
			}
			alert.SetMetadata(candidate.Metadata)
			if err := d.db.CreateAlert(alert); err != nil {
				return created, fmt.Errorf("create alert: %w", err)
			}
			created++
		}
	}
	if created > 0 {
		logrus.WithField("alerts_created", created).Info("alert check finished")
	}
	return created, nil
}
