package service

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/status-report/domain"
)

// documentXML unpacks the rendered docx and returns the main document part.
func documentXML(t *testing.T, data []byte) string {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "rendered document must be a valid docx archive")

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		require.NoError(t, err)

		defer func() {
			require.NoError(t, rc.Close())
		}()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)

		return string(content)
	}

	t.Fatal("word/document.xml not found in rendered document")

	return ""
}

func sampleReports() []domain.IssueReport {
	updated := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	return []domain.IssueReport{
		{
			Issue: domain.Issue{
				Key: "NCI-201", Title: "Index new studies", IssueType: "Task",
				Status: "In Progress", Assignee: "Dana Smith", Updated: updated,
			},
			Result: domain.SummaryResult{IssueKey: "NCI-201", Summary: "Indexing work is underway."},
		},
		{
			Issue: domain.Issue{
				Key: "NCI-202", Title: "Fix export job", IssueType: "Bug",
				Status: "Open", Assignee: domain.UnassignedPlaceholder, Updated: updated,
			},
			Result: domain.SummaryResult{IssueKey: "NCI-202", Summary: "Root cause identified."},
		},
		{
			Issue: domain.Issue{
				Key: "NCI-203", Title: "Evaluate archive policy", IssueType: "Story",
				Status: "Open", Assignee: "Lee Wong", Updated: updated,
			},
			Result: domain.SummaryResult{IssueKey: "NCI-203", Err: domain.ErrInferenceTimeout},
		},
	}
}

func TestReportBuilderService_Render(t *testing.T) {
	t.Run("should produce one section per issue in input order", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())

		data, err := svc.Render("Monthly Status", sampleReports())
		require.NoError(t, err)

		xml := documentXML(t, data)

		assert.Contains(t, xml, "Monthly Status")

		posA := strings.Index(xml, "NCI-201: Index new studies")
		posB := strings.Index(xml, "NCI-202: Fix export job")
		posC := strings.Index(xml, "NCI-203: Evaluate archive policy")

		require.GreaterOrEqual(t, posA, 0)
		require.GreaterOrEqual(t, posB, 0)
		require.GreaterOrEqual(t, posC, 0)
		assert.Less(t, posA, posB, "sections must appear in fetch order")
		assert.Less(t, posB, posC, "sections must appear in fetch order")
	})

	t.Run("should include summaries and metadata", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())

		data, err := svc.Render("Monthly Status", sampleReports())
		require.NoError(t, err)

		xml := documentXML(t, data)

		assert.Contains(t, xml, "Indexing work is underway.")
		assert.Contains(t, xml, "Root cause identified.")
		assert.Contains(t, xml, "Assignee: Dana Smith")
		assert.Contains(t, xml, "Status: In Progress")
		assert.Contains(t, xml, "Updated: 2026-08-15")
	})

	t.Run("should visibly flag failed summaries", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())

		data, err := svc.Render("Monthly Status", sampleReports())
		require.NoError(t, err)

		xml := documentXML(t, data)

		assert.Contains(t, xml, "summary unavailable: inference request timed out")
	})

	t.Run("should render identical structure for identical input", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())

		first, err := svc.Render("Monthly Status", sampleReports())
		require.NoError(t, err)

		second, err := svc.Render("Monthly Status", sampleReports())
		require.NoError(t, err)

		assert.Equal(t, documentXML(t, first), documentXML(t, second))
	})

	t.Run("should fail with ErrRender on empty input", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())

		_, err := svc.Render("Monthly Status", nil)

		assert.ErrorIs(t, err, domain.ErrRender)
	})
}

func TestReportBuilderService_Save(t *testing.T) {
	t.Run("should write the document to the target path", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())
		path := filepath.Join(t.TempDir(), "report.docx")

		require.NoError(t, svc.Save([]byte("document bytes"), path))

		// Overwrite semantics: a second save replaces the file.
		require.NoError(t, svc.Save([]byte("replaced"), path))
	})

	t.Run("should fail with ErrPersistence when the directory is missing", func(t *testing.T) {
		svc := NewReportBuilderService(testLoggerService())
		path := filepath.Join(t.TempDir(), "missing", "report.docx")

		err := svc.Save([]byte("document bytes"), path)

		assert.ErrorIs(t, err, domain.ErrPersistence)
	})
}
