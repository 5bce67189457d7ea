package repository

import "github.com/diillson/mssql-security-audit-go/internal/domain/entity"

// ReportRenderer is the streaming HTML sink. Open must be called exactly once
// before any other call; Close exactly once after all sections. Writes are
// append-only and immediate; there is no rollback.
type ReportRenderer interface {
	Open(title string) error
	Heading(level entity.SectionLevel, anchor, title string) error
	Paragraph(text string) error
	Table(columns []string, rows [][]string) error
	Close() error
}

// ExportRepository defines the interface for report artifacts on disk.
type ExportRepository interface {
	OpenHTMLReport(path string) (ReportRenderer, error)
	ExportMatrixToCSV(rows []entity.AuthorizationRow, filename, outputDir string) (string, error)
	ExportMatrixToJSON(rows []entity.AuthorizationRow, filename, outputDir string) (string, error)
	ExportSummaryToPDF(summary entity.AuditSummary, filename, outputDir string) (string, error)
}
