package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-availability-api/internal/dto"
	"github.com/noah-isme/appointment-availability-api/internal/middleware"
	"github.com/noah-isme/appointment-availability-api/internal/service"
	appErrors "github.com/noah-isme/appointment-availability-api/pkg/errors"
	"github.com/noah-isme/appointment-availability-api/pkg/response"
)

type availabilityService interface {
	Week(ctx context.Context, q dto.AvailabilityQuery) (*dto.AvailabilityResponse, bool, error)
	Combined(ctx context.Context, q dto.CombinedAvailabilityQuery) (*dto.CombinedAvailabilityResponse, bool, error)
}

type availabilityExporter interface {
	Week(ctx context.Context, q dto.AvailabilityQuery, format service.ExportFormat) (*service.ExportResult, error)
}

// AvailabilityHandler serves the public availability endpoints.
type AvailabilityHandler struct {
	service  availabilityService
	exporter availabilityExporter
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService, exporter availabilityExporter) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, exporter: exporter}
}

// Week godoc
// @Summary Week availability of one service
// @Tags Availability
// @Produce json
// @Param date query string true "Any date of the week (YYYY-MM-DD)"
// @Param serviceId query string true "Service ID"
// @Param employeeIds query string false "Comma separated employee IDs. Defaults to every employee offering the service"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Week(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	q := weekQuery(c)
	result, cacheHit, err := h.service.Week(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetIssueCount(c, len(result.Issues))
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, start))
}

// Combined godoc
// @Summary Back-to-back availability of two services
// @Tags Availability
// @Produce json
// @Param date query string true "Any date of the week (YYYY-MM-DD)"
// @Param serviceId query string true "First service ID"
// @Param secondServiceId query string true "Second service ID"
// @Param employeeIds query string false "Comma separated employee IDs"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/combined [get]
func (h *AvailabilityHandler) Combined(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	q := dto.CombinedAvailabilityQuery{
		Date:            strings.TrimSpace(c.Query("date")),
		ServiceID:       strings.TrimSpace(c.Query("serviceId")),
		SecondServiceID: strings.TrimSpace(c.Query("secondServiceId")),
		EmployeeIDs:     splitIDs(c.QueryArray("employeeIds")),
	}
	result, cacheHit, err := h.service.Combined(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetIssueCount(c, len(result.Issues))
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, start))
}

// Export godoc
// @Summary Download week availability
// @Tags Availability
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Any date of the week (YYYY-MM-DD)"
// @Param serviceId query string true "Service ID"
// @Param employeeIds query string false "Comma separated employee IDs"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /availability/export [get]
func (h *AvailabilityHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.Week(c.Request.Context(), weekQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

func weekQuery(c *gin.Context) dto.AvailabilityQuery {
	return dto.AvailabilityQuery{
		Date:        strings.TrimSpace(c.Query("date")),
		ServiceID:   strings.TrimSpace(c.Query("serviceId")),
		EmployeeIDs: splitIDs(c.QueryArray("employeeIds")),
	}
}

// splitIDs accepts both repeated parameters and comma separated values.
func splitIDs(values []string) []string {
	var ids []string
	for _, value := range values {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
