package entity

import "time"

// CheckOutcome é a situação de execução de um check para o sumário exportável.
type CheckOutcome struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Failed      bool   `json:"failed"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// AuditSummary condensa o run para os exports em CSV/JSON/PDF; o documento
// HTML continua sendo o artefato primário.
type AuditSummary struct {
	ServerName    string         `json:"server_name"`
	Host          string         `json:"host"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Checks        []CheckOutcome `json:"checks"`
	Databases     []DatabaseInfo `json:"databases"`
	MatrixRows    int            `json:"matrix_rows"`
	MappingRows   int            `json:"mapping_rows"`
	FailedSources []string       `json:"failed_sources,omitempty"`
}
