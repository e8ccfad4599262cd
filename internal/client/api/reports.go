package api

import (
	"context"
	"io"
	"net/http"

	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/models"
)

// Attachment is a file sent with a report.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// NewReport is an incident report to submit.
type NewReport struct {
	Title       string
	Description string
	Category    string
	Location    string
	Anonymous   bool
	Attachments []Attachment
}

// ReportList is a page of reports.
type ReportList struct {
	Reports    []models.Report `json:"reports"`
	Pagination Pagination      `json:"pagination"`
}

// CreateReport submits a report as multipart form data with its attachments.
func (c *Client) CreateReport(ctx context.Context, r NewReport) (*models.Report, error) {
	body := &gateway.Multipart{Fields: []gateway.Field{
		{Name: "title", Value: r.Title},
		{Name: "description", Value: r.Description},
		{Name: "category", Value: r.Category},
	}}
	if r.Location != "" {
		body.Fields = append(body.Fields, gateway.Field{Name: "location", Value: r.Location})
	}
	if r.Anonymous {
		body.Fields = append(body.Fields, gateway.Field{Name: "isAnonymous", Value: "true"})
	}
	for _, a := range r.Attachments {
		body.Files = append(body.Files, gateway.File{Field: "attachments", Filename: a.Filename, Content: a.Content})
	}

	var out struct {
		Report models.Report `json:"report"`
	}
	if err := c.doer.Do(ctx, http.MethodPost, "/reports", body, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}

// Reports lists reports visible to the caller.
func (c *Client) Reports(ctx context.Context, p ListParams) (*ReportList, error) {
	var out ReportList
	if err := c.doer.Do(ctx, http.MethodGet, "/reports"+p.encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches a report by its database id.
func (c *Client) Report(ctx context.Context, id string) (*models.Report, error) {
	var out struct {
		Report models.Report `json:"report"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/reports/"+esc(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}

// UpdateReportStatus moves a report through its workflow (admin only).
func (c *Client) UpdateReportStatus(ctx context.Context, id, status, note string) error {
	body := map[string]string{"status": status}
	if note != "" {
		body["note"] = note
	}
	return c.doer.Do(ctx, http.MethodPut, "/reports/"+esc(id)+"/status", body, nil)
}

// AssignReport assigns a report to a user (admin only).
func (c *Client) AssignReport(ctx context.Context, id, assignedTo string) error {
	return c.doer.Do(ctx, http.MethodPut, "/reports/"+esc(id)+"/assign", map[string]string{"assignedTo": assignedTo}, nil)
}

// AddReportNote appends a note to a report.
func (c *Client) AddReportNote(ctx context.Context, id, note string) error {
	return c.doer.Do(ctx, http.MethodPost, "/reports/"+esc(id)+"/notes", map[string]string{"note": note}, nil)
}

// CheckReportStatus looks a report up by its public tracking id.
func (c *Client) CheckReportStatus(ctx context.Context, reportID string) (*models.Report, error) {
	var out struct {
		Report models.Report `json:"report"`
	}
	if err := c.doer.Do(ctx, http.MethodGet, "/reports/status/"+esc(reportID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}
