// Package catalog carries the built-in benchmark check catalog. The engine
// treats it as external data: an ordered list of descriptors whose order is
// preserved in the report and whose numbering matches the benchmark.
package catalog

import (
	"fmt"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
)

var configColumns = []string{"name", "value_configured", "value_in_use"}

const configOptionQuery = `
	SELECT name,
		CAST(value AS int) AS value_configured,
		CAST(value_in_use AS int) AS value_in_use
	FROM sys.configurations
	WHERE name = '%s'`

// Builtin returns the ordered benchmark catalog shipped with the tool.
func Builtin() []entity.CheckDescriptor {
	return []entity.CheckDescriptor{
		{
			ID:          "2.1",
			Description: "'Ad Hoc Distributed Queries' server configuration option",
			Query:       configOption("Ad Hoc Distributed Queries"),
			Columns:     configColumns,
		},
		{
			ID:          "2.2",
			Description: "'CLR Enabled' server configuration option",
			Query:       configOption("clr enabled"),
			Columns:     configColumns,
		},
		{
			ID:          "2.3",
			Description: "'Cross DB Ownership Chaining' server configuration option",
			Query:       configOption("cross db ownership chaining"),
			Columns:     configColumns,
		},
		{
			ID:          "2.4",
			Description: "'Database Mail XPs' server configuration option",
			Query:       configOption("Database Mail XPs"),
			Columns:     configColumns,
		},
		{
			ID:          "2.5",
			Description: "'Ole Automation Procedures' server configuration option",
			Query:       configOption("Ole Automation Procedures"),
			Columns:     configColumns,
		},
		{
			ID:          "2.6",
			Description: "'Remote Access' server configuration option",
			Query:       configOption("remote access"),
			Columns:     configColumns,
		},
		{
			ID:          "2.7",
			Description: "'Remote Admin Connections' server configuration option",
			Query:       configOption("remote admin connections"),
			Columns:     configColumns,
		},
		{
			ID:          "2.8",
			Description: "'Scan For Startup Procs' server configuration option",
			Query:       configOption("scan for startup procs"),
			Columns:     configColumns,
		},
		{
			ID:          "2.9",
			Description: "TRUSTWORTHY database property is off for user databases",
			Query: `
				SELECT name, is_trustworthy_on
				FROM sys.databases
				WHERE database_id > 4
				ORDER BY name`,
			Columns: []string{"name", "is_trustworthy_on"},
		},
		{
			ID:          "2.13",
			Description: "'sa' login account state",
			Query: `
				SELECT name, is_disabled
				FROM sys.server_principals
				WHERE sid = 0x01`,
			Columns: []string{"name", "is_disabled"},
		},
		{
			ID:          "2.14",
			Description: "Endpoints and their states",
			Query: `
				SELECT name, type_desc, state_desc, is_admin_endpoint
				FROM sys.endpoints
				ORDER BY name`,
			Columns: []string{"name", "type_desc", "state_desc", "is_admin_endpoint"},
		},
		{
			ID:          "2.16",
			Description: "'xp_cmdshell' server configuration option",
			Query:       configOption("xp_cmdshell"),
			Columns:     configColumns,
		},
		{
			ID:          "3.1",
			Description: "Server authentication mode is Windows Authentication",
			Query: `
				SELECT CASE SERVERPROPERTY('IsIntegratedSecurityOnly')
					WHEN 1 THEN 'Windows Authentication'
					ELSE 'Mixed Mode'
				END AS authentication_mode`,
			Columns: []string{"authentication_mode"},
		},
		{
			ID:          "3.2",
			Description: "Orphaned users in the active database",
			Query: `
				SELECT dp.name, dp.type_desc
				FROM sys.database_principals dp
				LEFT JOIN sys.server_principals sp ON sp.sid = dp.sid
				WHERE dp.type IN ('S', 'U', 'G')
				AND dp.principal_id > 4
				AND sp.sid IS NULL
				ORDER BY dp.name`,
			Columns: []string{"name", "type_desc"},
		},
		{
			ID:          "4.2",
			Description: "SQL logins with password expiration check disabled",
			Query: `
				SELECT name, is_policy_checked, is_expiration_checked
				FROM sys.sql_logins
				WHERE is_expiration_checked = 0
				ORDER BY name`,
			Columns: []string{"name", "is_policy_checked", "is_expiration_checked"},
		},
		{
			ID:          "4.3",
			Description: "SQL logins with password policy check disabled",
			Query: `
				SELECT name, is_policy_checked
				FROM sys.sql_logins
				WHERE is_policy_checked = 0
				ORDER BY name`,
			Columns: []string{"name", "is_policy_checked"},
		},
		{
			ID:          "5.4",
			Description: "SQL Server audits and their states",
			Query: `
				SELECT name, type_desc, on_failure_desc, is_state_enabled
				FROM sys.server_audits
				ORDER BY name`,
			Columns: []string{"name", "type_desc", "on_failure_desc", "is_state_enabled"},
		},
	}
}

// configOption monta a consulta de sys.configurations para uma opção da
// lista fixa acima; não há entrada do usuário aqui.
func configOption(name string) string {
	return fmt.Sprintf(configOptionQuery, name)
}
