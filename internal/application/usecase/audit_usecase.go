package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// AuditUseCase handles the main audit pipeline: one connection, one ordered
// pass over the benchmark catalog, one authorization matrix, one HTML report.
type AuditUseCase struct {
	repo       repository.MSSQLRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
	logger     *zap.Logger
	checks     []entity.CheckDescriptor

	// lastMatrix guarda as linhas do último run para os exports opcionais.
	lastMatrix []entity.AuthorizationRow
}

// NewAuditUseCase creates a new audit use case.
func NewAuditUseCase(
	repo repository.MSSQLRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
	logger *zap.Logger,
	checks []entity.CheckDescriptor,
) *AuditUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditUseCase{
		repo:       repo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
		logger:     logger,
		checks:     checks,
	}
}

// ReportPath deriva o nome determinístico do relatório a partir do host.
func ReportPath(dir, host string) string {
	return filepath.Join(dir, safeName(host)+"_security_audit.html")
}

// safeName troca caracteres inválidos para nomes de arquivo.
func safeName(s string) string {
	invalid := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|', ' '}
	rs := []rune(s)
	for i, r := range rs {
		for _, bad := range invalid {
			if r == bad {
				rs[i] = '_'
			}
		}
	}
	return string(rs)
}

// RunAudit executa a funcionalidade principal da auditoria.
func (uc *AuditUseCase) RunAudit(ctx context.Context, args *types.CLIArgs) error {
	checks := uc.checks
	if args.CatalogFile != "" {
		loaded, err := uc.configRepo.LoadCheckCatalog(args.CatalogFile)
		if err != nil {
			return err
		}
		checks = loaded
	}

	outputPath := ReportPath(args.Dir, args.Server)

	// Confirmação de sobrescrita acontece antes de qualquer conexão ou
	// renderização; recusa sai limpo sem tocar o arquivo existente.
	if !args.Force {
		if _, err := os.Stat(outputPath); err == nil {
			if !uc.console.Confirm(fmt.Sprintf("Report %s already exists. Overwrite?", outputPath)) {
				return types.ErrUserAborted
			}
		}
	}

	database := args.Database
	if database == "" {
		database = "master"
	}
	target := entity.Target{
		Host:     args.Server,
		Database: database,
		Mode:     entity.AuthCredentialed,
		Username: args.Username,
		Password: args.Password,
	}
	if args.Integrated {
		target.Mode = entity.AuthIntegrated
	}

	status := uc.console.Status(fmt.Sprintf("Connecting to %s...", target.Host))
	if err := uc.repo.Connect(ctx, target); err != nil {
		status.Stop()
		return err
	}
	defer uc.repo.Close()
	status.Stop()
	uc.console.LogSuccess("Connected to %s (database %s)", target.Host, target.Database)

	serverName, err := uc.repo.GetServerName(ctx)
	if err != nil || serverName == "" {
		serverName = target.Host
	}

	renderer, err := uc.exportRepo.OpenHTMLReport(outputPath)
	if err != nil {
		return err
	}
	if err := renderer.Open(fmt.Sprintf("SQL Server Security Audit - %s", serverName)); err != nil {
		return err
	}

	summary := entity.AuditSummary{
		ServerName:  serverName,
		Host:        args.Server,
		GeneratedAt: time.Now(),
	}

	if err := renderer.Paragraph(fmt.Sprintf("Target host %s, audited as %s on %s.",
		args.Server, authLabel(target), summary.GeneratedAt.Format("2006-01-02 15:04:05"))); err != nil {
		return err
	}

	includeChecklist := args.Sections == types.SectionAll || args.Sections == types.SectionChecklistAudit
	includeUsers := args.Sections == types.SectionAll || args.Sections == types.SectionUserManagement

	// O inventário de bancos entra em ambos os modos; as propriedades do
	// servidor só acompanham a parte de checklist.
	databases, err := uc.emitServerOverview(ctx, renderer, args.Database, includeChecklist)
	if err != nil {
		return err
	}
	summary.Databases = databases

	if includeChecklist {
		if err := renderer.Heading(entity.SectionTop, "benchmark-checklist", "Benchmark Checklist"); err != nil {
			return err
		}
		sections, outcomes := uc.RunChecklist(ctx, checks)
		summary.Checks = outcomes
		for _, section := range sections {
			if err := emitSection(renderer, section); err != nil {
				return err
			}
		}
	}

	if includeUsers {
		matrixRows, mappings, failedSources, err := uc.BuildMatrix(ctx, serverName, databaseNames(databases))
		if err != nil {
			return err
		}
		uc.lastMatrix = matrixRows
		summary.MatrixRows = len(matrixRows)
		summary.MappingRows = len(mappings)
		summary.FailedSources = failedSources

		if err := uc.emitLoginMappings(renderer, mappings); err != nil {
			return err
		}
		// A matriz é sempre a última seção de primeiro nível do documento.
		if err := uc.emitMatrix(renderer, matrixRows, failedSources); err != nil {
			return err
		}
	}

	if err := renderer.Close(); err != nil {
		return err
	}
	uc.console.LogSuccess("Report written to %s", outputPath)

	uc.exportArtifacts(summary, args)
	return nil
}

func authLabel(target entity.Target) string {
	if target.Mode == entity.AuthIntegrated {
		return "integrated authentication"
	}
	return fmt.Sprintf("login %q", target.Username)
}

func databaseNames(databases []entity.DatabaseInfo) []string {
	names := make([]string, 0, len(databases))
	for _, db := range databases {
		names = append(names, db.Name)
	}
	return names
}

// emitServerOverview escreve as propriedades do servidor e o inventário de
// bancos, e devolve os bancos enumerados para as etapas seguintes.
func (uc *AuditUseCase) emitServerOverview(ctx context.Context, renderer repository.ReportRenderer, onlyDatabase string, includeProperties bool) ([]entity.DatabaseInfo, error) {
	if err := renderer.Heading(entity.SectionTop, "server-overview", "Server Overview"); err != nil {
		return nil, err
	}

	if includeProperties {
		props, err := uc.repo.GetServerProperties(ctx)
		if err != nil {
			uc.console.LogWarning("Could not read server properties: %s", err)
			if perr := renderer.Paragraph("Server properties unavailable: " + err.Error()); perr != nil {
				return nil, perr
			}
		} else {
			if terr := renderer.Table(props.Columns, props.Rows); terr != nil {
				return nil, terr
			}
		}
	}

	if err := renderer.Heading(entity.SectionSub, "databases", "Databases"); err != nil {
		return nil, err
	}

	databases, err := uc.EnumerateDatabases(ctx, onlyDatabase)
	if err != nil {
		var connErr *types.ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		uc.console.LogWarning("Could not enumerate databases: %s", err)
		if perr := renderer.Paragraph("Database enumeration failed: " + err.Error()); perr != nil {
			return nil, perr
		}
		return nil, nil
	}

	rows := make([][]string, 0, len(databases))
	for _, db := range databases {
		count := fmt.Sprintf("%d", db.UserCount)
		if db.CountError != "" {
			count = "n/a"
		}
		rows = append(rows, []string{db.Name, db.CreateDate.Format("2006-01-02 15:04:05"), count})
	}
	if err := renderer.Table([]string{"Database", "Created", "Users"}, rows); err != nil {
		return nil, err
	}

	return databases, nil
}

// EnumerateDatabases lista os bancos do alvo e deriva a contagem de usuários
// reconectando em cada um. A conexão sempre volta ao banco original, mesmo
// quando uma contagem individual falha; falha de rebind é fatal.
func (uc *AuditUseCase) EnumerateDatabases(ctx context.Context, onlyDatabase string) ([]entity.DatabaseInfo, error) {
	databases, err := uc.repo.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	if onlyDatabase != "" {
		filtered := databases[:0]
		for _, db := range databases {
			if db.Name == onlyDatabase {
				filtered = append(filtered, db)
			}
		}
		databases = filtered
	}

	for i := range databases {
		db := &databases[i]
		err := uc.withDatabase(ctx, db.Name, func(fctx context.Context) error {
			count, cerr := uc.repo.CountDatabaseUsers(fctx)
			if cerr != nil {
				return cerr
			}
			db.UserCount = count
			return nil
		})
		if err != nil {
			var connErr *types.ConnectionError
			if errors.As(err, &connErr) {
				return nil, err
			}
			uc.logger.Warn("user count failed", zap.String("database", db.Name), zap.Error(err))
			db.CountError = err.Error()
		}
	}

	return databases, nil
}

// withDatabase executa fn com a conexão religada a outro banco e garante a
// restauração do banco original mesmo quando fn falha. Falha na restauração
// escala como ConnectionError, sobrepondo o erro de fn.
func (uc *AuditUseCase) withDatabase(ctx context.Context, database string, fn func(context.Context) error) (err error) {
	original := uc.repo.ActiveDatabase()
	if database == original {
		return fn(ctx)
	}

	if rerr := uc.repo.Rebind(ctx, database); rerr != nil {
		return rerr
	}
	defer func() {
		if rerr := uc.repo.Rebind(ctx, original); rerr != nil {
			err = rerr
		}
	}()

	return fn(ctx)
}

// emitSection escreve uma seção transiente no renderer e a descarta.
func emitSection(renderer repository.ReportRenderer, section entity.ReportSection) error {
	if err := renderer.Heading(section.Level, section.Anchor, section.Title); err != nil {
		return err
	}
	if section.Text != "" {
		if err := renderer.Paragraph(section.Text); err != nil {
			return err
		}
	}
	if section.Table != nil {
		if err := renderer.Table(section.Table.Columns, section.Table.Rows); err != nil {
			return err
		}
	}
	return nil
}

// exportArtifacts gera os artefatos opcionais depois que o HTML foi fechado.
// Falha de export é registrada e não derruba o run.
func (uc *AuditUseCase) exportArtifacts(summary entity.AuditSummary, args *types.CLIArgs) {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return
	}

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportMatrixToCSV(uc.lastMatrix, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export matrix to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported matrix to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportMatrixToJSON(uc.lastMatrix, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export matrix to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported matrix to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportSummaryToPDF(summary, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export summary to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported summary to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type %q (expected csv, json or pdf)", reportType)
		}
	}
}
