package syntax

import (
	"sort"

	"ppc-dashboard/backend/internal/metrics"
)

// GroupingMode selects the aggregation key.
type GroupingMode int

const (
	// ByLabel groups rows on the full syntax label.
	ByLabel GroupingMode = iota
	// ByRoot groups rows on the label truncated at the size separator.
	ByRoot
)

// Row is one classified member with its summed metrics for the date window.
// Callers apply any filtering (root prefix, campaign type, match type, date
// window) to rows before aggregation; filtering afterwards would break the
// per-group rate math.
type Row struct {
	Label      string
	MemberID   string
	CampaignID string
	metrics.Totals
}

// Group is the aggregate for one label or root.
type Group struct {
	Key           string   `json:"key"`
	KeywordCount  int      `json:"keyword_count"`
	CampaignCount int      `json:"campaign_count"`
	SubGroups     []string `json:"sub_groups,omitempty"`

	metrics.Totals
	CTR  float64 `json:"ctr"`
	CVR  float64 `json:"cvr"`
	CPC  float64 `json:"cpc"`
	ACOS float64 `json:"acos"`
	ROAS float64 `json:"roas"`
}

type accumulator struct {
	totals    metrics.Totals
	members   map[string]struct{}
	campaigns map[string]struct{}
	subGroups map[string]struct{}
}

// Aggregate folds rows into groups keyed by label or root and derives the
// rate metrics once per group from the summed numerators and denominators.
// Rates are never averaged across members. Output is sorted by cost
// descending; ties keep first-fold order so results are deterministic.
func Aggregate(rows []Row, mode GroupingMode) []Group {
	byKey := make(map[string]*accumulator)
	var order []string

	for _, row := range rows {
		key := row.Label
		if mode == ByRoot {
			key = Root(row.Label)
		}
		acc, ok := byKey[key]
		if !ok {
			acc = &accumulator{
				members:   make(map[string]struct{}),
				campaigns: make(map[string]struct{}),
			}
			if mode == ByRoot {
				acc.subGroups = make(map[string]struct{})
			}
			byKey[key] = acc
			order = append(order, key)
		}
		acc.totals.Add(row.Totals)
		acc.members[row.MemberID] = struct{}{}
		acc.campaigns[row.CampaignID] = struct{}{}
		if acc.subGroups != nil {
			acc.subGroups[row.Label] = struct{}{}
		}
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		group := Group{
			Key:           key,
			KeywordCount:  len(acc.members),
			CampaignCount: len(acc.campaigns),
			Totals:        acc.totals,
			CTR:           metrics.CTR(acc.totals.Clicks, acc.totals.Impressions),
			CVR:           metrics.ConversionRate(acc.totals.Orders, acc.totals.Clicks),
			CPC:           metrics.CPC(acc.totals.Cost, acc.totals.Clicks),
			ACOS:          metrics.ACOS(acc.totals.Cost, acc.totals.Sales),
			ROAS:          metrics.ROAS(acc.totals.Sales, acc.totals.Cost),
		}
		if acc.subGroups != nil {
			group.SubGroups = make([]string, 0, len(acc.subGroups))
			for sub := range acc.subGroups {
				group.SubGroups = append(group.SubGroups, sub)
			}
			sort.Strings(group.SubGroups)
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Cost > groups[j].Cost
	})
	return groups
}
