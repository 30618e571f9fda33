package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campus-backend/internal/services"
	"campus-backend/internal/timeutil"
	"campus-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// GetRequestPDF handles GET /api/reports/requests/{id}/pdf
func (h *ReportHandler) GetRequestPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	data, err := h.Service.GetRequestFormData(ctx, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pdfData, err := h.Service.GenerateRequestPDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	filename := fmt.Sprintf("request_%s.pdf", id)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pdfData)
}

// parseReportDate reads ?date=YYYY-MM-DD, defaulting to today in local time
func parseReportDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return timeutil.Now(), nil
	}
	return time.ParseInLocation(timeutil.DateLayout, raw, timeutil.Manila)
}

// GetDailySummaryPDF handles GET /api/reports/daily/pdf
func (h *ReportHandler) GetDailySummaryPDF(w http.ResponseWriter, r *http.Request) {
	date, err := parseReportDate(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.GetDailySummaryData(ctx, date)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	pdfData, err := h.Service.GenerateDailySummaryPDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	filename := fmt.Sprintf("daily_summary_%s.pdf", date.Format(timeutil.DateLayout))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pdfData)
}

// GetDailySummaryCSV handles GET /api/reports/daily/csv
func (h *ReportHandler) GetDailySummaryCSV(w http.ResponseWriter, r *http.Request) {
	date, err := parseReportDate(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	csvData, err := h.Service.GenerateDailySummaryCSV(ctx, date)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("daily_summary_%s.csv", date.Format(timeutil.DateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(csvData)
}
