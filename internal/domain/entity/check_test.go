package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectReordersColumns(t *testing.T) {
	table := ResultTable{
		Columns: []string{"value_in_use", "name", "value_configured"},
		Rows: [][]string{
			{"1", "xp_cmdshell", "0"},
		},
	}

	projected := table.Project([]string{"name", "value_configured", "value_in_use"})

	assert.Equal(t, []string{"name", "value_configured", "value_in_use"}, projected.Columns)
	assert.Equal(t, [][]string{{"xp_cmdshell", "0", "1"}}, projected.Rows)
}

func TestProjectMissingColumnYieldsEmptyCells(t *testing.T) {
	table := ResultTable{
		Columns: []string{"name"},
		Rows:    [][]string{{"clr enabled"}},
	}

	projected := table.Project([]string{"name", "value_in_use"})

	assert.Equal(t, [][]string{{"clr enabled", ""}}, projected.Rows)
}

func TestProjectWithoutColumnsIsPassthrough(t *testing.T) {
	table := ResultTable{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"1", "2"}},
	}

	assert.Equal(t, table, table.Project(nil))
}
