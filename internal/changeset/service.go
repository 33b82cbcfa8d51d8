package changeset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Change-set lifecycle statuses. Transitions run one way:
// DRAFT -> EXPORTED -> APPLIED, with FAILED reachable from DRAFT or EXPORTED
// when apply-time mutations error. APPLIED and FAILED are terminal.
const (
	StatusDraft    = "DRAFT"
	StatusExported = "EXPORTED"
	StatusApplied  = "APPLIED"
	StatusFailed   = "FAILED"
)

// ErrNoItems rejects creation of an empty change set.
var ErrNoItems = errors.New("at least one item is required")

// ErrItemIncomplete rejects items missing structural fields at creation.
var ErrItemIncomplete = errors.New("each item requires entityType, entityId, entityName, and changes")

// TransitionError reports an operation attempted in a status that does not
// permit it. It is a protocol violation by the caller, distinct from both
// validation failure and the FAILED status.
type TransitionError struct {
	Op     string
	Status string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s change set in %s status", e.Op, e.Status)
}

// ValidationFailedError carries the full list of field-level problems that
// blocked a transition. The change set's status is left untouched.
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(e.Errors))
}

// Set is the service's view of a persisted change set.
type Set struct {
	ID         uint
	Name       string
	Status     string
	Items      []Item
	ExportedAt *time.Time
	AppliedAt  *time.Time
}

// SetStore persists change sets.
type SetStore interface {
	CreateChangeSet(name string, items []Item) (*Set, error)
	GetChangeSet(id uint) (*Set, error)
	UpdateChangeSetStatus(id uint, status string, errorMessage string) error
	DeleteChangeSet(id uint) error
}

// EntityStore applies field mutations to live campaign and keyword rows.
// Absent fields are left untouched, never reset.
type EntityStore interface {
	UpdateCampaignFields(id uint, fields map[string]any) error
	UpdateKeywordFields(id uint, fields map[string]any) error
}

// Service drives the change-set lifecycle.
type Service struct {
	sets     SetStore
	entities EntityStore
}

// NewService wires the lifecycle service to its stores.
func NewService(sets SetStore, entities EntityStore) *Service {
	return &Service{sets: sets, entities: entities}
}

// Create validates the batch and persists it in DRAFT. Nothing is stored
// when validation rejects the input.
func (s *Service) Create(name string, items []Item) (*Set, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.EntityType == "" || item.EntityID == 0 || item.EntityName == "" || item.Changes == nil {
			return nil, ErrItemIncomplete
		}
	}
	if errs := ValidateItems(items); len(errs) > 0 {
		return nil, &ValidationFailedError{Errors: errs}
	}
	set, err := s.sets.CreateChangeSet(name, items)
	if err != nil {
		return nil, fmt.Errorf("create change set: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"change_set": set.ID,
		"items":      len(items),
	}).Info("change set created")
	return set, nil
}

// Export re-validates the set, generates bulksheet rows and marks the set
// EXPORTED. Exporting an already-EXPORTED set is idempotent: rows are
// regenerated and the timestamp re-stamped.
func (s *Service) Export(id uint) ([]BulksheetRow, *Set, error) {
	set, err := s.sets.GetChangeSet(id)
	if err != nil {
		return nil, nil, err
	}
	if set.Status != StatusDraft && set.Status != StatusExported {
		return nil, nil, &TransitionError{Op: "export", Status: set.Status}
	}
	if errs := ValidateItems(set.Items); len(errs) > 0 {
		return nil, nil, &ValidationFailedError{Errors: errs}
	}
	rows := GenerateBulksheetRows(set.Items)
	if err := s.sets.UpdateChangeSetStatus(id, StatusExported, ""); err != nil {
		return nil, nil, fmt.Errorf("mark change set exported: %w", err)
	}
	set.Status = StatusExported
	logrus.WithFields(logrus.Fields{
		"change_set": id,
		"rows":       len(rows),
	}).Info("change set exported")
	return rows, set, nil
}

// ApplyResult reports the outcome of an Apply pass. Errors is empty on full
// success; a non-empty Errors with Applied > 0 means partial success.
type ApplyResult struct {
	Status  string   `json:"status"`
	Applied int      `json:"applied"`
	Errors  []string `json:"errors,omitempty"`
}

// Apply re-validates the set, then attempts every item's mutation in order.
// One item's failure never stops the rest: errors are collected and the set
// lands in APPLIED when the list is empty, FAILED otherwise. There is no
// cross-item atomicity; a partial apply is a reported outcome, not a bug.
func (s *Service) Apply(id uint) (*ApplyResult, error) {
	set, err := s.sets.GetChangeSet(id)
	if err != nil {
		return nil, err
	}
	if set.Status != StatusDraft && set.Status != StatusExported {
		return nil, &TransitionError{Op: "apply", Status: set.Status}
	}
	if errs := ValidateItems(set.Items); len(errs) > 0 {
		return nil, &ValidationFailedError{Errors: errs}
	}

	applied := 0
	var itemErrors []string
	for _, item := range set.Items {
		if err := s.applyItem(item); err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("Failed to apply %s %q: %v", item.EntityType, item.EntityName, err))
			continue
		}
		applied++
	}

	if len(itemErrors) > 0 {
		if err := s.sets.UpdateChangeSetStatus(id, StatusFailed, strings.Join(itemErrors, "\n")); err != nil {
			return nil, fmt.Errorf("mark change set failed: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"change_set": id,
			"applied":    applied,
			"failed":     len(itemErrors),
		}).Warn("change set apply finished with errors")
		return &ApplyResult{Status: StatusFailed, Applied: applied, Errors: itemErrors}, nil
	}

	if err := s.sets.UpdateChangeSetStatus(id, StatusApplied, ""); err != nil {
		return nil, fmt.Errorf("mark change set applied: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"change_set": id,
		"applied":    applied,
	}).Info("change set applied")
	return &ApplyResult{Status: StatusApplied, Applied: applied}, nil
}

// applyItem writes only the fields present in the item's changes map.
func (s *Service) applyItem(item Item) error {
	fields := make(map[string]any)
	switch item.EntityType {
	case EntityCampaign:
		if v, ok := item.Changes["budget"]; ok && v != nil {
			fields["daily_budget"] = v
		}
		if v, ok := item.Changes["state"]; ok && v != nil {
			if state, isString := v.(string); isString {
				fields["state"] = strings.ToUpper(state)
			}
		}
		for _, key := range []string{"tosModifier", "rosModifier", "pdpModifier"} {
			if v, ok := item.Changes[key]; ok && v != nil {
				fields[modifierColumn(key)] = v
			}
		}
		if len(fields) == 0 {
			return nil
		}
		return s.entities.UpdateCampaignFields(item.EntityID, fields)
	case EntityKeyword:
		if v, ok := item.Changes["bid"]; ok && v != nil {
			fields["bid"] = v
		}
		if v, ok := item.Changes["state"]; ok && v != nil {
			if state, isString := v.(string); isString {
				fields["state"] = strings.ToUpper(state)
			}
		}
		if len(fields) == 0 {
			return nil
		}
		return s.entities.UpdateKeywordFields(item.EntityID, fields)
	default:
		return fmt.Errorf("unknown entity type %q", item.EntityType)
	}
}

func modifierColumn(key string) string {
	switch key {
	case "tosModifier":
		return "tos_modifier"
	case "rosModifier":
		return "ros_modifier"
	default:
		return "pdp_modifier"
	}
}

// Delete removes a change set, permitted only while it is still DRAFT.
func (s *Service) Delete(id uint) error {
	set, err := s.sets.GetChangeSet(id)
	if err != nil {
		return err
	}
	if set.Status != StatusDraft {
		return &TransitionError{Op: "delete", Status: set.Status}
	}
	if err := s.sets.DeleteChangeSet(id); err != nil {
		return fmt.Errorf("delete change set: %w", err)
	}
	logrus.WithField("change_set", id).Info("change set deleted")
	return nil
}
