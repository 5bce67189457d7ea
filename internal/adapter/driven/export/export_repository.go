package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// OpenHTMLReport cria o arquivo do relatório e devolve o renderer de
// streaming sobre ele. A checagem de sobrescrita acontece antes, no caso de
// uso; chegar aqui significa que o caller decidiu escrever.
func (r *ExportRepositoryImpl) OpenHTMLReport(path string) (repository.ReportRenderer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, &types.OutputError{Path: path, Err: err}
	}
	return NewHTMLReportWriter(file, path), nil
}

// --- Funções de Exportação da Matriz de Autorização ---

func (r *ExportRepositoryImpl) ExportMatrixToCSV(rows []entity.AuthorizationRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(entity.MatrixColumns); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Cells()); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportMatrixToJSON(rows []entity.AuthorizationRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Exportação do Sumário da Auditoria ---

func (r *ExportRepositoryImpl) ExportSummaryToPDF(summary entity.AuditSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{30, 42, 56}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Security Audit: %s", summary.ServerName)), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Host: %s | Generated: %s",
		summary.Host, summary.GeneratedAt.Format("2006-01-02 15:04:05"))), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	checksStr := ""
	for _, check := range summary.Checks {
		status := "executed"
		if check.Failed {
			status = "FAILED: " + check.ErrorDetail
		}
		checksStr += fmt.Sprintf("%s - %s: %s\n", check.ID, check.Description, status)
	}
	drawSection("Benchmark Checklist", checksStr)

	dbStr := ""
	for _, db := range summary.Databases {
		if db.CountError != "" {
			dbStr += fmt.Sprintf("%s (created %s): user count unavailable\n",
				db.Name, db.CreateDate.Format("2006-01-02"))
		} else {
			dbStr += fmt.Sprintf("%s (created %s): %d user(s)\n",
				db.Name, db.CreateDate.Format("2006-01-02"), db.UserCount)
		}
	}
	drawSection("Databases", dbStr)

	drawSection("Authorization Matrix", fmt.Sprintf(
		"%d matrix row(s), %d login/user mapping(s)", summary.MatrixRows, summary.MappingRows))

	if len(summary.FailedSources) > 0 {
		failStr := ""
		for _, src := range summary.FailedSources {
			failStr += src + "\n"
		}
		drawSection("Sources With Errors", failStr)
	}

	// Rodapé
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by MSSQL Security Audit (Go) | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
