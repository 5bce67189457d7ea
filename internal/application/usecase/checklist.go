package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
)

// RunChecklist executes the catalog in order against the live connection and
// returns one report section per check, in catalog order, plus the outcome
// list for the summary. A failing check yields a failure section and the run
// continues with the next check.
func (uc *AuditUseCase) RunChecklist(ctx context.Context, checks []entity.CheckDescriptor) ([]entity.ReportSection, []entity.CheckOutcome) {
	sections := make([]entity.ReportSection, 0, len(checks))
	outcomes := make([]entity.CheckOutcome, 0, len(checks))

	progress := uc.console.ProgressWithTotal(len(checks))
	for _, check := range checks {
		result := uc.runCheck(ctx, check)

		section := entity.ReportSection{
			Level:  entity.SectionSub,
			Anchor: checkAnchor(check.ID),
			Title:  fmt.Sprintf("%s %s", check.ID, check.Description),
			Failed: result.Failed,
		}
		outcome := entity.CheckOutcome{
			ID:          check.ID,
			Description: check.Description,
			Failed:      result.Failed,
			ErrorDetail: result.ErrorDetail,
		}

		if result.Failed {
			uc.logger.Warn("check failed",
				zap.String("check", check.ID), zap.String("detail", result.ErrorDetail))
			section.Text = "Check failed: " + result.ErrorDetail
		} else {
			table := mergeTables(result.Tables).Project(check.Columns)
			section.Table = &table
		}

		sections = append(sections, section)
		outcomes = append(outcomes, outcome)
		progress.Increment()
	}
	progress.Stop()

	return sections, outcomes
}

// runCheck executa um único check e normaliza o resultado. Erros de consulta
// são absorvidos aqui; nada deste caminho derruba o run.
func (uc *AuditUseCase) runCheck(ctx context.Context, check entity.CheckDescriptor) entity.CheckResult {
	result := entity.CheckResult{CheckID: check.ID}

	if check.MultiResult {
		tables, err := uc.repo.RunQueryMulti(ctx, check.Query)
		if err != nil {
			result.Failed = true
			result.ErrorDetail = err.Error()
			return result
		}
		result.Tables = tables
		return result
	}

	table, err := uc.repo.RunQuery(ctx, check.Query)
	if err != nil {
		result.Failed = true
		result.ErrorDetail = err.Error()
		return result
	}
	result.Tables = []entity.ResultTable{table}
	return result
}

// mergeTables concatena result sets com o mesmo formato de colunas; result
// sets de formato divergente são descartados em favor do primeiro.
func mergeTables(tables []entity.ResultTable) entity.ResultTable {
	if len(tables) == 0 {
		return entity.ResultTable{}
	}
	merged := tables[0]
	for _, t := range tables[1:] {
		if sameColumns(merged.Columns, t.Columns) {
			merged.Rows = append(merged.Rows, t.Rows...)
		}
	}
	return merged
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkAnchor deriva um id de âncora estável a partir do id do check.
func checkAnchor(id string) string {
	return "check-" + strings.ReplaceAll(strings.ToLower(id), ".", "-")
}
