package changeset

import (
	"fmt"
	"math"
)

// Entity types a change-set item may target.
const (
	EntityCampaign = "CAMPAIGN"
	EntityKeyword  = "KEYWORD"
)

// Bid and budget floors and the placement modifier range, in currency major
// units and percent respectively.
const (
	minBudget   = 1.0
	minBid      = 0.02
	minModifier = 0
	maxModifier = 900
)

// ValidationError names one failing field on one item. itemIndex and
// entityName let a UI highlight exactly what to fix.
type ValidationError struct {
	ItemIndex  int    `json:"itemIndex"`
	EntityName string `json:"entityName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// Item is the validator's and exporter's view of one proposed mutation.
type Item struct {
	EntityType       string         `json:"entityType"`
	EntityID         uint           `json:"entityId"`
	EntityName       string         `json:"entityName"`
	CampaignName     string         `json:"campaignName,omitempty"`
	AdGroupName      string         `json:"adGroupName,omitempty"`
	AmazonCampaignID string         `json:"amazonCampaignId,omitempty"`
	AmazonAdGroupID  string         `json:"amazonAdGroupId,omitempty"`
	AmazonKeywordID  string         `json:"amazonKeywordId,omitempty"`
	MatchType        string         `json:"matchType,omitempty"`
	Changes          map[string]any `json:"changes"`
	PreviousValues   map[string]any `json:"previousValues,omitempty"`
}

// ValidateItems range-checks every item's proposed changes and returns the
// full list of problems; an empty slice means valid. Items are validated
// independently and validation never short-circuits, so the caller can report
// everything wrong in one pass.
//
// Unrecognized keys in a changes map are ignored here: the validator checks
// values of known fields, it does not police the schema. Kept permissive to
// match observed behavior.
func ValidateItems(items []Item) []ValidationError {
	var errs []ValidationError
	for i, item := range items {
		fields := campaignFields
		if item.EntityType == EntityKeyword {
			fields = keywordFields
		}

		recognized := 0
		for _, f := range fields {
			value, ok := item.Changes[f.name]
			if !ok || value == nil {
				continue
			}
			recognized++
			if msg := f.check(value); msg != "" {
				errs = append(errs, ValidationError{
					ItemIndex:  i,
					EntityName: item.EntityName,
					Field:      f.name,
					Message:    msg,
				})
			}
		}
		if recognized == 0 {
			errs = append(errs, ValidationError{
				ItemIndex:  i,
				EntityName: item.EntityName,
				Field:      "changes",
				Message:    "At least one change is required",
			})
		}
	}
	return errs
}

type fieldRule struct {
	name  string
	check func(value any) string
}

var campaignFields = []fieldRule{
	{"budget", checkBudget},
	{"state", checkState},
	{"tosModifier", checkModifier},
	{"rosModifier", checkModifier},
	{"pdpModifier", checkModifier},
}

var keywordFields = []fieldRule{
	{"bid", checkBid},
	{"state", checkState},
}

func checkBudget(value any) string {
	n, ok := asFloat(value)
	if !ok {
		return "Budget must be a number"
	}
	if n < minBudget {
		return "Budget must be at least $1"
	}
	return ""
}

func checkBid(value any) string {
	n, ok := asFloat(value)
	if !ok {
		return "Bid must be a number"
	}
	if n < minBid {
		return "Bid must be at least $0.02"
	}
	return ""
}

func checkState(value any) string {
	s, ok := value.(string)
	if !ok || (s != "enabled" && s != "paused") {
		return `State must be "enabled" or "paused"`
	}
	return ""
}

func checkModifier(value any) string {
	n, ok := asFloat(value)
	if !ok || n != math.Trunc(n) {
		return "Placement modifier must be an integer"
	}
	if n < minModifier || n > maxModifier {
		return fmt.Sprintf("Placement modifier must be %d-%d%%", minModifier, maxModifier)
	}
	return ""
}

// asFloat accepts the numeric shapes JSON decoding produces.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
