package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Server      string   `json:"server" yaml:"server" toml:"server"`
	Database    string   `json:"database" yaml:"database" toml:"database"`
	Integrated  bool     `json:"integrated" yaml:"integrated" toml:"integrated"`
	Username    string   `json:"username" yaml:"username" toml:"username"`
	Sections    string   `json:"sections" yaml:"sections" toml:"sections"`
	CatalogFile string   `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file"`
	ReportName  string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType  []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir         string   `json:"dir" yaml:"dir" toml:"dir"`
	Force       bool     `json:"force" yaml:"force" toml:"force"`
}
