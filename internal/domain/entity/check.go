package entity

// CheckDescriptor is one entry of the benchmark catalog: a declarative
// configuration or permission assertion run against the target. The catalog
// is external data; the engine only guarantees order-preserving execution.
type CheckDescriptor struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Query       string   `yaml:"query"`
	Columns     []string `yaml:"columns"`
	MultiResult bool     `yaml:"multi_result"`
}

// ResultTable é um result set tabular já normalizado para strings.
type ResultTable struct {
	Columns []string
	Rows    [][]string
}

// Project reordena a tabela para a ordem de colunas declarada pelo check.
// Colunas declaradas mas ausentes no result set viram células vazias.
func (t ResultTable) Project(columns []string) ResultTable {
	if len(columns) == 0 {
		return t
	}

	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = -1
		for j, col := range t.Columns {
			if col == name {
				idx[i] = j
				break
			}
		}
	}

	out := ResultTable{Columns: columns}
	for _, row := range t.Rows {
		cells := make([]string, len(columns))
		for i, j := range idx {
			if j >= 0 && j < len(row) {
				cells[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// CheckResult é o resultado de um único check do catálogo.
type CheckResult struct {
	CheckID     string
	Tables      []ResultTable
	Failed      bool
	ErrorDetail string
}
