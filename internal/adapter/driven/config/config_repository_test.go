package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeFile(t, "audit.yaml", `
server: db01.corp.local
database: sales
username: auditor
sections: UserManagement
report_type:
  - csv
  - pdf
force: true
`)

	repo := NewConfigRepository()
	config, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "db01.corp.local", config.Server)
	assert.Equal(t, "sales", config.Database)
	assert.Equal(t, "auditor", config.Username)
	assert.Equal(t, "UserManagement", config.Sections)
	assert.Equal(t, []string{"csv", "pdf"}, config.ReportType)
	assert.True(t, config.Force)
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeFile(t, "audit.toml", `
server = "db01"
integrated = true
`)

	repo := NewConfigRepository()
	config, err := repo.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db01", config.Server)
	assert.True(t, config.Integrated)
}

func TestLoadConfigFileUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "audit.ini", "server=db01")

	repo := NewConfigRepository()
	_, err := repo.LoadConfigFile(path)
	assert.Error(t, err)
}

func TestLoadCheckCatalog(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
checks:
  - id: "9.1"
    description: custom check
    query: SELECT 1 AS ok
    columns: [ok]
  - id: "9.2"
    description: multi result check
    query: EXEC sp_something
    multi_result: true
`)

	repo := NewConfigRepository()
	checks, err := repo.LoadCheckCatalog(path)
	require.NoError(t, err)
	require.Len(t, checks, 2)

	// A ordem do arquivo é a ordem do relatório.
	assert.Equal(t, "9.1", checks[0].ID)
	assert.Equal(t, []string{"ok"}, checks[0].Columns)
	assert.Equal(t, "9.2", checks[1].ID)
	assert.True(t, checks[1].MultiResult)
}

func TestLoadCheckCatalogRejectsIncompleteEntries(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
checks:
  - id: "9.1"
    description: missing query
`)

	repo := NewConfigRepository()
	_, err := repo.LoadCheckCatalog(path)
	assert.ErrorContains(t, err, "missing id or query")
}

func TestLoadCheckCatalogRejectsEmpty(t *testing.T) {
	path := writeFile(t, "catalog.yaml", "checks: []")

	repo := NewConfigRepository()
	_, err := repo.LoadCheckCatalog(path)
	assert.ErrorContains(t, err, "no checks")
}
