package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile  string
	Server      string
	Database    string
	Integrated  bool
	Username    string
	Password    string
	Sections    string
	CatalogFile string
	ReportName  string
	ReportType  []string
	Dir         string
	Force       bool
	Verbose     bool
}

// Valores aceitos pelo seletor --sections.
const (
	SectionAll            = "All"
	SectionChecklistAudit = "ChecklistAudit"
	SectionUserManagement = "UserManagement"
)

// ValidSection informa se o valor do seletor de seções é reconhecido.
func ValidSection(s string) bool {
	switch s {
	case SectionAll, SectionChecklistAudit, SectionUserManagement:
		return true
	}
	return false
}
