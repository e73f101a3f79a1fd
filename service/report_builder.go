package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	docx "github.com/fumiama/go-docx"

	"github.com/CBIIT/status-report/domain"
)

// Half-point font sizes for the docx runs.
const (
	titleSize   = "36"
	headingSize = "28"
)

// ReportBuilderService implementation.
type reportBuilderService struct {
	logger *slog.Logger
}

// NewReportBuilderService creates a new report builder service.
func NewReportBuilderService(logger *slog.Logger) ReportBuilderService {
	return &reportBuilderService{logger: logger}
}

// Render serializes the report into docx bytes: a title heading, an issue
// overview table, then one section per issue in the order given. The input
// order is preserved as-is, so identical inputs produce an identical document.
func (s *reportBuilderService) Render(title string, reports []domain.IssueReport) ([]byte, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: no issues to report", domain.ErrRender)
	}

	w := docx.New().WithDefaultTheme()

	titlePara := w.AddParagraph().Justification("center")
	titlePara.AddText(title).Size(titleSize).Bold()

	w.AddParagraph()

	s.addOverviewTable(w, reports)

	for _, report := range reports {
		s.addIssueSection(w, report)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	s.logger.Info("report rendered", "sections", len(reports), "bytes", buf.Len())

	return buf.Bytes(), nil
}

// Save writes the document to path with overwrite semantics. Exactly one file
// is written per run.
func (s *reportBuilderService) Save(data []byte, path string) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to write report file", "path", path, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.logger.Info("report saved", "path", path, "bytes", len(data))

	return nil
}

func (s *reportBuilderService) addOverviewTable(w *docx.Docx, reports []domain.IssueReport) {
	table := w.AddTable(len(reports)+1, 4, 0, nil)

	headers := []string{"Issue Type", "Issue Key", "Summary", "Status"}
	for i, header := range headers {
		table.TableRows[0].TableCells[i].AddParagraph().AddText(header).Bold()
	}

	for i, report := range reports {
		cells := table.TableRows[i+1].TableCells
		cells[0].AddParagraph().AddText(report.Issue.IssueType)
		cells[1].AddParagraph().AddText(report.Issue.Key)
		cells[2].AddParagraph().AddText(report.Issue.Title)
		cells[3].AddParagraph().AddText(report.Issue.Status)
	}
}

func (s *reportBuilderService) addIssueSection(w *docx.Docx, report domain.IssueReport) {
	issue := report.Issue

	w.AddParagraph()

	heading := w.AddParagraph()
	heading.AddText(fmt.Sprintf("%s: %s", issue.Key, issue.Title)).Size(headingSize).Bold()

	updated := domain.UnknownPlaceholder
	if !issue.Updated.IsZero() {
		updated = issue.Updated.Format("2006-01-02")
	}

	meta := w.AddParagraph()
	meta.AddText(fmt.Sprintf("Type: %s | Status: %s | Assignee: %s | Updated: %s",
		issue.IssueType, issue.Status, issue.Assignee, updated)).Italic()

	body := w.AddParagraph()
	if report.Result.Failed() {
		body.AddText(fmt.Sprintf("summary unavailable: %v", report.Result.Err)).Italic()
	} else {
		body.AddText(report.Result.Summary)
	}
}
