package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludedPrincipal(t *testing.T) {
	tests := []struct {
		name     string
		excluded bool
	}{
		{"sa", true},
		{"##MS_PolicyEventProcessingLogin##", true},
		{"##MS_AgentSigningCertificate##", true},
		{`NT SERVICE\MSSQLSERVER`, true},
		{`NT AUTHORITY\SYSTEM`, true},
		{`CORP\svcacct`, false},
		{"appuser", false},
		{"sally", false},           // "sa" só exclui por igualdade exata
		{"saanderson", false},      // idem
		{`CORP\NT SERVICE`, false}, // prefixo no meio do nome não conta
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.excluded, ExcludedPrincipal(tt.name))
		})
	}
}

func TestSortMatrixOrdersByLoginThenScope(t *testing.T) {
	rows := []AuthorizationRow{
		{LoginName: "zoe", ServerName: "srv1"},
		{LoginName: "amy", ServerName: "srv1", DBName: "sales"},
		{LoginName: "amy", ServerName: "srv1"},
		{LoginName: "amy", ServerName: "srv1", SrvRoleName: "sysadmin"},
	}

	SortMatrix(rows)

	// Para o mesmo login, chaves vazias ordenam antes de qualquer valor:
	// a linha de identidade pura vem primeiro, depois a concessão de
	// servidor (db_* vazios), depois a linha com banco.
	require.Len(t, rows, 4)
	assert.Equal(t, "amy", rows[0].LoginName)
	assert.Empty(t, rows[0].DBName)
	assert.Empty(t, rows[0].SrvRoleName)
	assert.Equal(t, "sysadmin", rows[1].SrvRoleName)
	assert.Equal(t, "sales", rows[2].DBName)
	assert.Equal(t, "zoe", rows[3].LoginName)
}

func TestSortMatrixIsIdempotent(t *testing.T) {
	rows := []AuthorizationRow{
		{LoginName: "bob", DBName: "crm", DBRoleName: "db_owner"},
		{LoginName: "alice", SrvRoleName: "securityadmin"},
		{LoginName: "bob", DBName: "crm", DBRoleName: "db_datareader"},
		{LoginName: "alice"},
	}

	SortMatrix(rows)
	first := make([]AuthorizationRow, len(rows))
	copy(first, rows)

	SortMatrix(rows)
	assert.Equal(t, first, rows)
}

func TestCellsMatchesColumnOrder(t *testing.T) {
	row := AuthorizationRow{
		LoginName:  "alice",
		ServerName: "srv1",
		LoginType:  "SQL_LOGIN",
		DBName:     "sales",
		Notes:      "mapped",
	}

	cells := row.Cells()
	require.Len(t, cells, len(MatrixColumns))
	assert.Equal(t, "alice", cells[0])
	assert.Equal(t, "srv1", cells[1])
	assert.Equal(t, "SQL_LOGIN", cells[2])
	assert.Equal(t, "sales", cells[9])
	assert.Equal(t, "mapped", cells[len(cells)-1])
}
