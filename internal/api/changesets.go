package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ppc-dashboard/backend/internal/changeset"
)

func (s *Server) handleCreateChangeSet(c *gin.Context) {
	var req CreateChangeSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	set, err := s.changeSets.Create(req.Name, req.Items)
	if err != nil {
		s.renderChangeSetError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ChangeSetFromSet(set))
}

func (s *Server) handleListChangeSets(c *gin.Context) {
	offset, limit := pagination(c, 25)
	rows, total, err := s.db.ListChangeSets(offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]ChangeSetSummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ChangeSetSummaryFromModel(row))
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos, "total": total})
}

func (s *Server) handleGetChangeSet(c *gin.Context) {
	setID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	set, err := s.db.GetChangeSet(setID)
	if err != nil {
		s.renderChangeSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChangeSetFromSet(set))
}

func (s *Server) handleDeleteChangeSet(c *gin.Context) {
	setID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.changeSets.Delete(setID); err != nil {
		s.renderChangeSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleExportChangeSet(c *gin.Context) {
	setID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	rows, set, err := s.changeSets.Export(setID)
	if err != nil {
		s.renderChangeSetError(c, err)
		return
	}

	filename := fmt.Sprintf("bulksheet-change-set-%d.csv", set.ID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv")
	if err := changeset.WriteBulksheetCSV(c.Writer, rows); err != nil {
		return
	}
}

func (s *Server) handleApplyChangeSet(c *gin.Context) {
	setID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	result, err := s.changeSets.Apply(setID)
	if err != nil {
		s.renderChangeSetError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":  result.Status,
			"applied": result.Applied,
			"errors":  result.Errors,
			"message": "Some changes failed to apply",
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderChangeSetError maps service errors onto HTTP statuses. Validation
// failures carry the per-item error list in the body.
func (s *Server) renderChangeSetError(c *gin.Context, err error) {
	var validation *changeset.ValidationFailedError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            validation.Error(),
			"validationErrors": validation.Errors,
		})
		return
	}
	var transition *changeset.TransitionError
	if errors.As(err, &transition) {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	switch {
	case errors.Is(err, changeset.ErrNoItems), errors.Is(err, changeset.ErrItemIncomplete):
		s.renderError(c, http.StatusBadRequest, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.renderError(c, http.StatusNotFound, errors.New("change set not found"))
	default:
		s.renderError(c, http.StatusInternalServerError, err)
	}
}
