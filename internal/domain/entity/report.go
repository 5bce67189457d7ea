package entity

// SectionLevel distingue cabeçalhos de primeiro e segundo nível do relatório.
type SectionLevel int

const (
	SectionTop SectionLevel = iota
	SectionSub
)

// ReportSection is a transient render unit: constructed, handed to the
// renderer, never retained. Body is either free text or a table.
type ReportSection struct {
	Level  SectionLevel
	Anchor string
	Title  string
	Text   string
	Table  *ResultTable
	Failed bool
}
