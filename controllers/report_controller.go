package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
)

const dateFieldMessage = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"

// parseReportQuery reads startDate, endDate and, when withStatus is set, status.
// A date-only endDate covers the whole day.
func parseReportQuery(c *gin.Context, withStatus bool) (services.ReportQuery, bool) {
	q := services.ReportQuery{
		RawStart: c.Query("startDate"),
		RawEnd:   c.Query("endDate"),
	}

	if q.RawStart != "" {
		start, _, err := utils.ParseDate(q.RawStart)
		if err != nil {
			utils.RespondError(c, utils.NewFieldError("startDate", dateFieldMessage))
			return q, false
		}
		start = start.UTC()
		q.Start = &start
	}
	if q.RawEnd != "" {
		end, err := utils.ParseRangeEnd(q.RawEnd)
		if err != nil {
			utils.RespondError(c, utils.NewFieldError("endDate", dateFieldMessage))
			return q, false
		}
		end = end.UTC()
		q.End = &end
	}

	if withStatus {
		if raw := c.Query("status"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			status := models.StatusID(id)
			if err != nil || !status.Valid() {
				utils.RespondError(c, utils.NewFieldError("status", "must be a known order status (1-7)"))
				return q, false
			}
			q.StatusID = status
		}
	}
	return q, true
}

func newReportService() *services.ReportService {
	return services.NewReportService(config.GetDB())
}

// SalesReport handles GET /api/v1/reports/sales
func SalesReport(c *gin.Context) {
	q, ok := parseReportQuery(c, true)
	if !ok {
		return
	}

	report, err := newReportService().Sales(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, report)
}

// MastersReport handles GET /api/v1/reports/masters
func MastersReport(c *gin.Context) {
	q, ok := parseReportQuery(c, false)
	if !ok {
		return
	}

	report, err := newReportService().Masters(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, report)
}

// DeviceTypesReport handles GET /api/v1/reports/device-types
func DeviceTypesReport(c *gin.Context) {
	q, ok := parseReportQuery(c, false)
	if !ok {
		return
	}

	report, err := newReportService().DeviceTypes(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, report)
}
