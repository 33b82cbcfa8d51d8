package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ppc-dashboard/backend/internal/alerts"
	"ppc-dashboard/backend/internal/changeset"
	"ppc-dashboard/backend/internal/metrics"
	"ppc-dashboard/backend/internal/store"
	"ppc-dashboard/backend/internal/syntax"
)

// defaultWindowDays is the metric lookback applied when a request does not
// pass an explicit window.
const defaultWindowDays = 30

// Config defines server dependencies.
type Config struct {
	DBPath         string
	TermsPath      string
	AllowedOrigins []string
	SilentDB       bool
}

// Server wires HTTP handlers with persistence, classification, and the
// change-set lifecycle.
type Server struct {
	db             *store.Database
	classifier     *syntax.Classifier
	changeSets     *changeset.Service
	detector       *alerts.Detector
	termsPath      string
	allowedOrigins []string
	ingestNotifier *IngestNotifier
	jobMu          sync.Mutex
	activeJob      *ingestJob
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	var classifier *syntax.Classifier
	termsPath := strings.TrimSpace(cfg.TermsPath)
	if termsPath == "" {
		classifier = syntax.NewClassifier(syntax.DefaultTerms())
	} else {
		classifier, err = syntax.NewClassifierFromFile(termsPath)
		if err != nil {
			return nil, fmt.Errorf("syntax classifier: %w", err)
		}
		logrus.WithField("path", termsPath).Info("syntax terms loaded")
	}

	return &Server{
		db:             db,
		classifier:     classifier,
		changeSets:     changeset.NewService(db, db),
		detector:       alerts.NewDetector(db),
		termsPath:      termsPath,
		allowedOrigins: cfg.AllowedOrigins,
		ingestNotifier: NewIngestNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/reports", s.handleUploadReport)
		api.GET("/reports", s.handleListReportBatches)
		api.GET("/reports/:id", s.handleGetReportBatch)
		api.GET("/reports/status", s.handleIngestStatus)
		api.GET("/reports/stream", s.handleIngestStream)

		api.GET("/campaigns", s.handleListCampaigns)
		api.GET("/campaigns/:id", s.handleGetCampaign)
		api.GET("/campaigns/:id/search-terms", s.handleCampaignSearchTerms)
		api.GET("/campaigns/:id/placements", s.handleCampaignPlacements)
		api.GET("/keywords", s.handleListKeywords)

		api.GET("/syntax", s.handleSyntaxGroups)
		api.GET("/syntax/:group/keywords", s.handleSyntaxGroupKeywords)
		api.GET("/root-index", s.handleRootIndex)

		api.GET("/alerts", s.handleListAlerts)
		api.POST("/alerts/check", s.handleCheckAlerts)
		api.POST("/alerts/:id/resolve", s.handleResolveAlert)

		api.POST("/change-sets", s.handleCreateChangeSet)
		api.GET("/change-sets", s.handleListChangeSets)
		api.GET("/change-sets/:id", s.handleGetChangeSet)
		api.DELETE("/change-sets/:id", s.handleDeleteChangeSet)
		api.POST("/change-sets/:id/export", s.handleExportChangeSet)
		api.POST("/change-sets/:id/apply", s.handleApplyChangeSet)

		api.GET("/export.csv", s.handleExportKeywordsCSV)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	portfolios, err := s.db.ListPortfolioNames()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	campaigns, err := s.db.CountCampaigns()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	keywords, err := s.db.CountKeywords()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"terms_path":  s.termsPath,
		"portfolios":  portfolios,
		"campaigns":   campaigns,
		"keywords":    keywords,
		"window_days": defaultWindowDays,
	})
}

func (s *Server) handleUploadReport(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	reportDate := time.Now().UTC().Truncate(24 * time.Hour)
	if value := strings.TrimSpace(c.PostForm("report_date")); value != "" {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid report_date: %s", value))
			return
		}
		reportDate = parsed
	}

	fileHeader, err := c.FormFile("report")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.renderError(c, http.StatusBadRequest, errors.New("report csv file is required"))
		} else {
			s.renderError(c, http.StatusBadRequest, err)
		}
		return
	}

	path, err := saveFormFile(fileHeader)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	batch, err := s.db.CreateReportBatch(name, fileHeader.Filename)
	if err != nil {
		os.Remove(path)
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.activeJob != nil {
		os.Remove(path)
		s.renderError(c, http.StatusConflict, errors.New("ingestion already running"))
		return
	}

	job, err := s.startIngestion(batch, path, reportDate)
	if err != nil {
		os.Remove(path)
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"batch_id": batch.ID,
		"job":      job.id,
		"filename": fileHeader.Filename,
	}).Info("report ingestion started")

	c.JSON(http.StatusAccepted, UploadResponse{
		BatchID:   batch.ID,
		JobID:     job.id,
		StartedAt: job.startedAt,
	})
}

func (s *Server) handleListReportBatches(c *gin.Context) {
	offset, limit := pagination(c, 25)
	rows, total, err := s.db.ListReportBatches(offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]ReportBatchDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ReportBatchFromModel(row))
	}
	c.JSON(http.StatusOK, ReportBatchesResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetReportBatch(c *gin.Context) {
	batchID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	batch, err := s.db.GetReportBatch(batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("report batch %d not found", batchID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, ReportBatchFromModel(*batch))
}

func (s *Server) handleIngestStatus(c *gin.Context) {
	s.jobMu.Lock()
	job := s.activeJob
	s.jobMu.Unlock()

	status := s.ingestNotifier.LastStatus()

	resp := IngestStatusResponse{Running: job != nil}
	if job != nil {
		resp.JobID = job.id
		resp.BatchID = job.batchID
		resp.Total = job.total
	}
	if status != nil {
		resp.State = status.Type
		resp.Message = status.Message
		if status.Processed != 0 {
			resp.Processed = status.Processed
		}
		if status.Total != 0 {
			resp.Total = status.Total
		}
		if status.BatchID != 0 {
			resp.BatchID = status.BatchID
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleIngestStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.ingestNotifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("ingest websocket connected")
	defer s.ingestNotifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("ingest websocket closed")
			} else {
				logrus.WithError(err).Warn("ingest websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) handleListCampaigns(c *gin.Context) {
	offset, limit := pagination(c, 100)
	rows, total, err := s.db.ListCampaigns(store.CampaignQuery{
		Since:     windowStart(c),
		Portfolio: strings.TrimSpace(c.Query("portfolio")),
		State:     strings.TrimSpace(c.Query("state")),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]CampaignDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, CampaignFromRow(row))
	}
	c.JSON(http.StatusOK, CampaignsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetCampaign(c *gin.Context) {
	campaignID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	row, err := s.db.GetCampaign(campaignID, windowStart(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("campaign %d not found", campaignID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, CampaignFromRow(*row))
}

func (s *Server) handleCampaignSearchTerms(c *gin.Context) {
	campaignID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	terms, err := s.db.ListSearchTerms(campaignID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]SearchTermDTO, 0, len(terms))
	for _, st := range terms {
		dtos = append(dtos, SearchTermFromModel(st))
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

func (s *Server) handleCampaignPlacements(c *gin.Context) {
	campaignID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	placements, err := s.db.ListPlacements(campaignID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]PlacementDTO, 0, len(placements))
	for _, pm := range placements {
		dtos = append(dtos, PlacementFromModel(pm))
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

func (s *Server) handleListKeywords(c *gin.Context) {
	offset, limit := pagination(c, 100)
	rows, err := s.db.ListKeywordRows(s.keywordQuery(c, offset, limit))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]KeywordDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, KeywordFromRow(row))
	}
	c.JSON(http.StatusOK, KeywordsResponse{Items: dtos})
}

func (s *Server) handleSyntaxGroups(c *gin.Context) {
	rows, err := s.db.ListKeywordRows(s.keywordQuery(c, 0, 0))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	groups := syntax.Aggregate(aggregationRows(rows), syntax.ByLabel)
	dtos := make([]SyntaxGroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, SyntaxGroupDTO{
			SyntaxGroup:   g.Key,
			KeywordCount:  g.KeywordCount,
			CampaignCount: g.CampaignCount,
			Metrics:       metricsDTO(g.Impressions, g.Clicks, g.Cost, g.Sales, g.Orders, g.Units),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

func (s *Server) handleSyntaxGroupKeywords(c *gin.Context) {
	group := strings.TrimSpace(c.Param("group"))
	if group == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("syntax group is required"))
		return
	}
	query := s.keywordQuery(c, 0, 0)
	query.SyntaxGroup = group
	rows, err := s.db.ListKeywordRows(query)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]KeywordDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, KeywordFromRow(row))
	}
	c.JSON(http.StatusOK, KeywordsResponse{Items: dtos})
}

func (s *Server) handleRootIndex(c *gin.Context) {
	query := s.keywordQuery(c, 0, 0)
	query.LabeledOnly = true
	rows, err := s.db.ListKeywordRows(query)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	filtered := aggregationRows(rows)
	if prefix := strings.TrimSpace(c.Query("root")); prefix != "" {
		kept := filtered[:0]
		for _, row := range filtered {
			if syntax.Root(row.Label) == prefix {
				kept = append(kept, row)
			}
		}
		filtered = kept
	}
	groups := syntax.Aggregate(filtered, syntax.ByRoot)
	dtos := make([]RootDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, RootDTO{
			Root:             g.Key,
			SyntaxGroupCount: len(g.SubGroups),
			KeywordCount:     g.KeywordCount,
			CampaignCount:    g.CampaignCount,
			SubGroups:        g.SubGroups,
			Metrics:          metricsDTO(g.Impressions, g.Clicks, g.Cost, g.Sales, g.Orders, g.Units),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

func (s *Server) handleListAlerts(c *gin.Context) {
	offset, limit := pagination(c, 100)
	unresolvedOnly := strings.EqualFold(strings.TrimSpace(c.Query("unresolved")), "true")
	rows, total, err := s.db.ListAlerts(unresolvedOnly, offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]AlertDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, AlertFromModel(row))
	}
	c.JSON(http.StatusOK, AlertsResponse{Items: dtos, Total: total})
}

func (s *Server) handleCheckAlerts(c *gin.Context) {
	created, err := s.detector.CheckAndCreate()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (s *Server) handleResolveAlert(c *gin.Context) {
	alertID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.db.ResolveAlert(alertID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("alert %d not found", alertID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

func (s *Server) handleExportKeywordsCSV(c *gin.Context) {
	rows, err := s.db.ListKeywordRows(s.keywordQuery(c, 0, 0))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=keywords-export.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	headers := []string{"keyword", "match_type", "campaign", "ad_group", "syntax_group", "bid", "impressions", "clicks", "cost", "sales", "orders", "acos", "roas"}
	if err := writer.Write(headers); err != nil {
		return
	}
	for _, row := range rows {
		line := []string{
			row.KeywordText,
			row.MatchType,
			row.CampaignName,
			row.AdGroupName,
			row.SyntaxGroup,
			fmt.Sprintf("%.2f", row.Bid),
			strconv.Itoa(row.Impressions),
			strconv.Itoa(row.Clicks),
			fmt.Sprintf("%.2f", row.Cost),
			fmt.Sprintf("%.2f", row.Sales),
			strconv.Itoa(row.Orders),
			fmt.Sprintf("%.2f", metrics.ACOS(row.Cost, row.Sales)),
			fmt.Sprintf("%.2f", metrics.ROAS(row.Sales, row.Cost)),
		}
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

// keywordQuery builds the shared keyword filter from request parameters.
func (s *Server) keywordQuery(c *gin.Context, offset, limit int) store.KeywordQuery {
	query := store.KeywordQuery{
		Since:         windowStart(c),
		MatchType:     strings.TrimSpace(c.Query("match_type")),
		SyntaxGroup:   strings.TrimSpace(c.Query("syntax_group")),
		Portfolio:     strings.TrimSpace(c.Query("portfolio")),
		CampaignState: strings.TrimSpace(c.Query("campaign_state")),
		Offset:        offset,
		Limit:         limit,
	}
	if value := strings.TrimSpace(firstNonEmpty(c.Query("campaign_id"), c.Query("campaignId"))); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			query.CampaignID = uint(parsed)
		}
	}
	return query
}

func aggregationRows(rows []store.KeywordRow) []syntax.Row {
	out := make([]syntax.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, syntax.Row{
			Label:      row.SyntaxGroup,
			MemberID:   strconv.FormatUint(uint64(row.ID), 10),
			CampaignID: strconv.FormatUint(uint64(row.CampaignID), 10),
			Totals: metrics.Totals{
				Impressions: row.Impressions,
				Clicks:      row.Clicks,
				Cost:        row.Cost,
				Sales:       row.Sales,
				Orders:      row.Orders,
			},
		})
	}
	return out
}

// windowStart resolves the metric window from a days query parameter.
func windowStart(c *gin.Context) time.Time {
	days := defaultWindowDays
	if value := strings.TrimSpace(c.Query("days")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}

func pagination(c *gin.Context, defaultSize int) (offset, limit int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return page * pageSize, pageSize
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseUintParam(value string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("identifier is required")
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier: %w", err)
	}
	if parsed == 0 {
		return 0, errors.New("identifier must be greater than zero")
	}
	return uint(parsed), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func saveFormFile(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", errors.New("file header is nil")
	}
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "report-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}
