package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/mineops-reports/internal/http/middleware"
	"github.com/nurpe/mineops-reports/internal/model"
	"github.com/nurpe/mineops-reports/internal/repository"
	"github.com/nurpe/mineops-reports/internal/service"
)

type Handler struct {
	reports *service.ReportService
	stats   *service.StatsService
	log     zerolog.Logger
}

func NewHandler(reports *service.ReportService, stats *service.StatsService, log zerolog.Logger) *Handler {
	return &Handler{reports: reports, stats: stats, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/reports", h.createReport)
	protected.GET("/reports", h.listReports)
	protected.GET("/reports/:id", h.getReport)
	protected.GET("/reports/:id/pdf", h.exportReportPDF)
	protected.PATCH("/reports/:id", h.updateReport)
	protected.DELETE("/reports/:id", h.deleteReport)
	protected.GET("/stats", h.getStats)
	protected.GET("/stats/export", h.exportStats)
}

type createReportRequest struct {
	ProjectID    uuid.UUID                   `json:"project_id" binding:"required"`
	ActivityDate string                      `json:"activity_date" binding:"required"`
	Shift        string                      `json:"shift"`
	Zone         string                      `json:"zone"`
	Location     string                      `json:"location"`
	StartTime    string                      `json:"start_time"`
	EndTime      string                      `json:"end_time"`
	Foreman      string                      `json:"foreman"`
	Supervisor   string                      `json:"supervisor"`
	Observations string                      `json:"observations"`
	ClientKey    *string                     `json:"client_key"`
	Haul         []model.HaulEntry           `json:"haul"`
	Materials    []model.MaterialEntry       `json:"materials"`
	Water        []model.WaterEntry          `json:"water"`
	Machinery    []model.MachineryEntry      `json:"machinery"`
	MapPins      []model.MapPin              `json:"map_pins"`
	Personnel    []model.PersonnelAssignment `json:"personnel"`
}

func (h *Handler) createReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activityDate, err := parseDate(req.ActivityDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity_date"})
		return
	}

	report, err := h.reports.Create(c.Request.Context(), service.CreateReportInput{
		ProjectID:    req.ProjectID,
		AuthorID:     principal.UserID,
		ActivityDate: activityDate,
		Shift:        req.Shift,
		Zone:         req.Zone,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Foreman:      req.Foreman,
		Supervisor:   req.Supervisor,
		Observations: req.Observations,
		ClientKey:    req.ClientKey,
		Haul:         req.Haul,
		Materials:    req.Materials,
		Water:        req.Water,
		Machinery:    req.Machinery,
		MapPins:      req.MapPins,
		Personnel:    req.Personnel,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) getReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listReports(c *gin.Context) {
	filter := repository.ListFilter{}
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		filter.ProjectID = &id
	}
	if raw := strings.TrimSpace(c.Query("author_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author_id"})
			return
		}
		filter.AuthorID = &id
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return
		}
		filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
			return
		}
		filter.DateTo = &to
	}
	filter.Limit = intQuery(c, "limit")
	filter.Offset = intQuery(c, "offset")

	reports, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type updateReportRequest struct {
	ProjectID    *uuid.UUID                   `json:"project_id"`
	ActivityDate *string                      `json:"activity_date"`
	Shift        *string                      `json:"shift"`
	Zone         *string                      `json:"zone"`
	Location     *string                      `json:"location"`
	StartTime    *string                      `json:"start_time"`
	EndTime      *string                      `json:"end_time"`
	Foreman      *string                      `json:"foreman"`
	Supervisor   *string                      `json:"supervisor"`
	Observations *string                      `json:"observations"`
	Note         string                       `json:"note"`
	Haul         *[]model.HaulEntry           `json:"haul"`
	Materials    *[]model.MaterialEntry       `json:"materials"`
	Water        *[]model.WaterEntry          `json:"water"`
	Machinery    *[]model.MachineryEntry      `json:"machinery"`
	MapPins      *[]model.MapPin              `json:"map_pins"`
	Personnel    *[]model.PersonnelAssignment `json:"personnel"`
}

func (h *Handler) updateReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.ReportPatch{
		ProjectID:    req.ProjectID,
		Shift:        req.Shift,
		Zone:         req.Zone,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Foreman:      req.Foreman,
		Supervisor:   req.Supervisor,
		Observations: req.Observations,
	}
	if req.ActivityDate != nil {
		activityDate, err := parseDate(*req.ActivityDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity_date"})
			return
		}
		patch.ActivityDate = &activityDate
	}

	report, err := h.reports.Update(c.Request.Context(), id, service.UpdateReportInput{
		Patch: patch,
		Children: service.ChildCollections{
			Haul:      req.Haul,
			Materials: req.Materials,
			Water:     req.Water,
			Machinery: req.Machinery,
			MapPins:   req.MapPins,
			Personnel: req.Personnel,
		},
		Actor: principal,
		Note:  req.Note,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.reports.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getStats(c *gin.Context) {
	filter, ok := h.statsFilter(c)
	if !ok {
		return
	}
	stats, err := h.stats.Compute(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) exportStats(c *gin.Context) {
	filter, ok := h.statsFilter(c)
	if !ok {
		return
	}
	result, err := h.stats.ExportExcel(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) exportReportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	result, err := h.reports.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) statsFilter(c *gin.Context) (service.StatsFilter, bool) {
	filter := service.StatsFilter{}
	if raw := strings.TrimSpace(c.Query("project_ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_ids"})
				return service.StatsFilter{}, false
			}
			filter.ProjectIDs = append(filter.ProjectIDs, id)
		}
	}
	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return service.StatsFilter{}, false
		}
		filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
			return service.StatsFilter{}, false
		}
		filter.DateTo = &to
	}
	return filter, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
