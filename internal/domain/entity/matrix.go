package entity

import (
	"sort"
	"strings"
)

// AuthorizationRow is a single wide record of the authorization matrix. Rows
// are sparse: each contributing source populates only the field group it can
// supply and leaves the rest empty.
type AuthorizationRow struct {
	// Identidade do login (nível servidor)
	LoginName  string `json:"login_name"`
	ServerName string `json:"server_name"`
	LoginType  string `json:"login_type"`

	// Concessões no escopo do servidor
	SrvRoleName        string `json:"srv_role_name,omitempty"`
	SrvSchemaName      string `json:"srv_schema_name,omitempty"`
	SrvObjectName      string `json:"srv_object_name,omitempty"`
	SrvObjectType      string `json:"srv_object_type,omitempty"`
	SrvPermissionName  string `json:"srv_permission_name,omitempty"`
	SrvPermissionState string `json:"srv_permission_state,omitempty"`

	// Concessões no escopo de banco de dados
	DBName            string `json:"db_name,omitempty"`
	DBUserName        string `json:"db_user_name,omitempty"`
	DBRoleName        string `json:"db_role_name,omitempty"`
	DBSchemaName      string `json:"db_schema_name,omitempty"`
	DBObjectName      string `json:"db_object_name,omitempty"`
	DBObjectType      string `json:"db_object_type,omitempty"`
	DBPermissionName  string `json:"db_permission_name,omitempty"`
	DBPermissionState string `json:"db_permission_state,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// MatrixColumns é a ordem de colunas da matriz no relatório.
var MatrixColumns = []string{
	"Login", "Server", "Login Type",
	"Srv Role", "Srv Schema", "Srv Object", "Srv Object Type", "Srv Permission", "Srv State",
	"DB", "DB User", "DB Role", "DB Schema", "DB Object", "DB Object Type", "DB Permission", "DB State",
	"Notes",
}

// Cells retorna a linha na ordem de MatrixColumns.
func (r AuthorizationRow) Cells() []string {
	return []string{
		r.LoginName, r.ServerName, r.LoginType,
		r.SrvRoleName, r.SrvSchemaName, r.SrvObjectName, r.SrvObjectType, r.SrvPermissionName, r.SrvPermissionState,
		r.DBName, r.DBUserName, r.DBRoleName, r.DBSchemaName, r.DBObjectName, r.DBObjectType, r.DBPermissionName, r.DBPermissionState,
		r.Notes,
	}
}

// sortKey é a tupla de ordenação da matriz, nesta ordem exata. Valores vazios
// ordenam antes de qualquer valor não-vazio para a mesma chave.
func (r AuthorizationRow) sortKey() []string {
	return []string{
		r.LoginName, r.ServerName,
		r.DBName, r.DBRoleName, r.DBSchemaName, r.DBObjectType, r.DBObjectName, r.DBPermissionState, r.DBPermissionName,
		r.SrvRoleName, r.SrvSchemaName, r.SrvObjectType, r.SrvObjectName, r.SrvPermissionState, r.SrvPermissionName,
	}
}

// SortMatrix ordena as linhas de forma estável e determinística. Reordenar uma
// sequência já ordenada é um no-op.
func SortMatrix(rows []AuthorizationRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].sortKey(), rows[j].sortKey()
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

// Contas nunca admitidas na matriz: a conta administrativa bem conhecida e os
// prefixos de contas internas, de serviço e de autoridade do Windows.
const (
	adminAccount    = "sa"
	internalPrefix  = "##"
	servicePrefix   = `NT SERVICE\`
	authorityPrefix = `NT AUTHORITY\`
)

// ExcludedPrincipal decide se um candidato a identidade fica fora da matriz.
// O filtro roda uma vez por fonte, antes da construção da linha; nunca se
// removem linhas depois do fato.
func ExcludedPrincipal(name string) bool {
	if name == adminAccount {
		return true
	}
	return strings.HasPrefix(name, internalPrefix) ||
		strings.HasPrefix(name, servicePrefix) ||
		strings.HasPrefix(name, authorityPrefix)
}
