package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"campus-backend/internal/models"
	"campus-backend/internal/query"
	"campus-backend/internal/repositories"
	"campus-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// RequestFormData holds everything printed on a request form
type RequestFormData struct {
	Detail     *RequestDetail
	Requester  *models.User
	Department *models.Department
	Reviewer   *models.User
}

// DailySummaryData holds data for the daily activity report
type DailySummaryData struct {
	Date     time.Time
	Requests []*models.Request
	ByType   map[string]int
	ByStatus map[string]int
	Total    int
}

// ReportService renders printable request forms and daily summaries
type ReportService struct {
	Requests *RequestService
	UserRepo *repositories.UserRepository
	DeptRepo *repositories.DepartmentRepository
}

func NewReportService(requests *RequestService, userRepo *repositories.UserRepository, deptRepo *repositories.DepartmentRepository) *ReportService {
	return &ReportService{Requests: requests, UserRepo: userRepo, DeptRepo: deptRepo}
}

// GetRequestFormData fetches a request and the people and department
// referenced on its form. Lookup failures on secondary rows degrade to
// blank form fields rather than failing the report.
func (s *ReportService) GetRequestFormData(ctx context.Context, id string) (*RequestFormData, error) {
	detail, err := s.Requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data := &RequestFormData{Detail: detail}
	if u, err := s.UserRepo.GetByID(ctx, detail.UserID); err == nil {
		data.Requester = u
	}
	if d, err := s.DeptRepo.GetByID(ctx, detail.DepartmentID); err == nil {
		data.Department = d
	}
	if detail.ReviewedBy != nil {
		if u, err := s.UserRepo.GetByID(ctx, *detail.ReviewedBy); err == nil {
			data.Reviewer = u
		}
	}
	return data, nil
}

// GenerateRequestPDF renders a single request as a printable A4 form
func (s *ReportService) GenerateRequestPDF(data *RequestFormData) ([]byte, error) {
	req := data.Detail
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Resource Request Form", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Request Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Request Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Reference: %s", req.ID), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Type: %s", req.Type), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Title: %s", truncate(req.Title, 40)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Priority: %s", req.Priority), "RB", 1, "L", false, 0, "")
	requester := ""
	if data.Requester != nil {
		requester = data.Requester.Name
	}
	department := ""
	if data.Department != nil {
		department = data.Department.Name
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Requested by: %s", requester), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Department: %s", department), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Filed: %s", timeutil.ToLocal(req.CreatedAt).Format(timeutil.DisplayLayout)), "LB", 0, "L", false, 0, "")
	reviewer := ""
	if data.Reviewer != nil {
		reviewer = data.Reviewer.Name
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Reviewed by: %s", reviewer), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	s.writeDetailSection(pdf, req)

	// Status box with color cue
	switch req.Status {
	case models.StatusCompleted, models.StatusApproved, models.StatusReviewed:
		pdf.SetFillColor(200, 255, 200)
	case models.StatusRejected, models.StatusCancelled:
		pdf.SetFillColor(255, 200, 200)
	default:
		pdf.SetFillColor(255, 245, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Status: %s", req.Status), "1", 1, "C", true, 0, "")
	if req.RejectReason != nil && *req.RejectReason != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(190, 7, fmt.Sprintf("Reason: %s", truncate(*req.RejectReason, 100)), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeDetailSection prints the type-specific block of the form
func (s *ReportService) writeDetailSection(pdf *gofpdf.Fpdf, req *RequestDetail) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Details", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)

	row := func(label, value string) {
		pdf.CellFormat(50, 7, label, "LB", 0, "L", false, 0, "")
		pdf.CellFormat(140, 7, truncate(value, 85), "RB", 1, "L", false, 0, "")
	}

	switch {
	case req.Job != nil:
		row("Job type", req.Job.JobType)
		row("Location", req.Job.Location)
		row("Description", req.Job.Description)
		if req.Job.StartDate != nil {
			row("Target start", timeutil.ToLocal(*req.Job.StartDate).Format(timeutil.DisplayLayout))
		}
		if req.Job.ActualEnd != nil {
			row("Finished", timeutil.ToLocal(*req.Job.ActualEnd).Format(timeutil.DisplayLayout))
		}
	case req.Venue != nil:
		row("Venue", req.Venue.VenueName)
		row("From", timeutil.ToLocal(req.Venue.StartTime).Format(timeutil.DisplayLayout))
		row("Until", timeutil.ToLocal(req.Venue.EndTime).Format(timeutil.DisplayLayout))
		row("Purpose", req.Venue.Purpose)
		if len(req.Venue.SetupRequirements) > 0 {
			row("Setup", strings.Join(req.Venue.SetupRequirements, ", "))
		}
	case req.Transport != nil:
		row("Vehicle", req.Transport.VehicleName)
		row("Destination", req.Transport.Destination)
		row("Departure", timeutil.ToLocal(req.Transport.DateAndTimeNeeded).Format(timeutil.DisplayLayout))
		if len(req.Transport.PassengersName) > 0 {
			row("Passengers", strings.Join(req.Transport.PassengersName, ", "))
		}
		if req.Transport.OdometerStart != nil {
			row("Odometer out", fmt.Sprintf("%.1f km", *req.Transport.OdometerStart))
		}
		if req.Transport.OdometerEnd != nil {
			row("Odometer in", fmt.Sprintf("%.1f km", *req.Transport.OdometerEnd))
		}
		if req.Transport.TotalDistanceTravelled != nil {
			row("Distance", fmt.Sprintf("%.1f km", *req.Transport.TotalDistanceTravelled))
		}
	case req.Returnable != nil:
		row("Item", req.Returnable.ItemName)
		row("Quantity", fmt.Sprintf("%d", req.Returnable.Quantity))
		row("Purpose", req.Returnable.Purpose)
		row("Needed", timeutil.ToLocal(req.Returnable.DateAndTimeNeeded).Format(timeutil.DisplayLayout))
		if req.Returnable.ReturnDateAndTime != nil {
			row("Return by", timeutil.ToLocal(*req.Returnable.ReturnDateAndTime).Format(timeutil.DisplayLayout))
		}
		if req.Returnable.ReturnedAt != nil {
			row("Returned", timeutil.ToLocal(*req.Returnable.ReturnedAt).Format(timeutil.DisplayLayout))
		}
	case req.Supply != nil:
		row("Item", req.Supply.ItemName)
		row("Quantity", fmt.Sprintf("%d", req.Supply.Quantity))
		row("Purpose", req.Supply.Purpose)
		row("Needed", timeutil.ToLocal(req.Supply.DateAndTimeNeeded).Format(timeutil.DisplayLayout))
	}
	pdf.Ln(5)
}

// GetDailySummaryData fetches all requests filed on the given local day
func (s *ReportService) GetDailySummaryData(ctx context.Context, date time.Time) (*DailySummaryData, error) {
	from := timeutil.StartOfDay(date)
	to := timeutil.EndOfDay(date)

	data := &DailySummaryData{
		Date:     date,
		ByType:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	// Page through the day's requests
	for page := 1; ; page++ {
		p := &query.ListParams{
			Page:    page,
			PerPage: query.MaxPerPage,
			From:    &from,
			To:      &to,
		}
		rows, total, err := s.Requests.List(ctx, p)
		if err != nil {
			return nil, err
		}
		data.Requests = append(data.Requests, rows...)
		data.Total = total
		if len(rows) < query.MaxPerPage || len(data.Requests) >= total {
			break
		}
	}

	for _, r := range data.Requests {
		data.ByType[r.Type]++
		data.ByStatus[r.Status]++
	}
	return data, nil
}

// GenerateDailySummaryPDF renders the daily activity report in landscape
func (s *ReportService) GenerateDailySummaryPDF(data *DailySummaryData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(277, 12, "Daily Request Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(277, 8, fmt.Sprintf("Date: %s", data.Date.Format("02-Jan-2006 (Monday)")), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Summary Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, "Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(69, 8, fmt.Sprintf("Total Requests: %d", data.Total), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Pending: %d", data.ByStatus[models.StatusPending]), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Approved: %d", data.ByStatus[models.StatusApproved]), "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, fmt.Sprintf("Completed: %d", data.ByStatus[models.StatusCompleted]), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Requests Table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, "Requests", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Reference", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 7, "Title", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Priority", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Filed", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, r := range data.Requests {
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", true, 0, "")
		pdf.CellFormat(45, 6, r.ID, "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 6, r.Type, "1", 0, "C", true, 0, "")
		pdf.CellFormat(95, 6, truncate(r.Title, 55), "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 6, r.Priority, "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 6, r.Status, "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 6, timeutil.ToLocal(r.CreatedAt).Format("03:04 PM"), "1", 1, "C", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateDailySummaryCSV renders the daily activity report as CSV
func (s *ReportService) GenerateDailySummaryCSV(ctx context.Context, date time.Time) ([]byte, error) {
	data, err := s.GetDailySummaryData(ctx, date)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Daily Request Summary", data.Date.Format("02-Jan-2006")})
	w.Write([]string{""})
	w.Write([]string{"Total Requests", fmt.Sprintf("%d", data.Total)})
	for _, status := range []string{
		models.StatusPending, models.StatusApproved, models.StatusReviewed,
		models.StatusCompleted, models.StatusRejected, models.StatusCancelled,
	} {
		if n := data.ByStatus[status]; n > 0 {
			w.Write([]string{status, fmt.Sprintf("%d", n)})
		}
	}
	w.Write([]string{""})

	w.Write([]string{"#", "Reference", "Type", "Title", "Priority", "Status", "Filed"})
	for i, r := range data.Requests {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			r.ID,
			r.Type,
			r.Title,
			r.Priority,
			r.Status,
			timeutil.ToLocal(r.CreatedAt).Format(timeutil.DateTimeLayout),
		})
	}

	w.Flush()
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
