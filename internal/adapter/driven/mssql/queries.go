package mssql

// Consultas de inventário e das fontes da matriz de autorização. As consultas
// dos checks do benchmark não moram aqui: elas chegam como dados do catálogo.
const (
	serverPropertiesQuery = `
		SELECT
			CAST(SERVERPROPERTY('ServerName') AS nvarchar(128))      AS [Server Name],
			CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128))  AS [Product Version],
			CAST(SERVERPROPERTY('ProductLevel') AS nvarchar(128))    AS [Product Level],
			CAST(SERVERPROPERTY('Edition') AS nvarchar(128))         AS [Edition],
			CASE SERVERPROPERTY('IsIntegratedSecurityOnly')
				WHEN 1 THEN 'Windows Authentication'
				ELSE 'Mixed Mode'
			END                                                      AS [Authentication Mode]`

	serverNameQuery = `SELECT CAST(SERVERPROPERTY('ServerName') AS nvarchar(128))`

	databaseListQuery = `
		SELECT name, create_date
		FROM sys.databases
		ORDER BY name`

	databaseUserCountQuery = `
		SELECT COUNT(*)
		FROM sys.database_principals
		WHERE type IN ('S', 'U', 'G')
		AND principal_id > 4`

	serverLoginsQuery = `
		SELECT
			p.name,
			p.type_desc,
			CAST(SERVERPROPERTY('ServerName') AS nvarchar(128)) AS server_name
		FROM sys.server_principals p
		WHERE p.type <> 'R'
		ORDER BY p.name`

	// Procedure de sistema: emite um result set por login, cada um com as
	// colunas LoginName, DBName, UserName, AliasName.
	loginMappingsQuery = `EXEC master..sp_msloginmappings`

	serverRoleMembersQuery = `
		SELECT
			r.name AS role_name,
			m.name AS member_name,
			m.type_desc AS member_type,
			CONVERT(varchar(19), m.create_date, 120) AS create_date,
			CONVERT(varchar(19), m.modify_date, 120) AS modify_date
		FROM sys.server_role_members rm
		JOIN sys.server_principals r ON r.principal_id = rm.role_principal_id
		JOIN sys.server_principals m ON m.principal_id = rm.member_principal_id
		ORDER BY r.name, m.name`

	serverPermissionsQuery = `
		SELECT
			pr.name AS grantee_name,
			pr.type_desc AS grantee_type,
			pe.class_desc AS object_type,
			ISNULL(e.name, '') AS object_name,
			pe.permission_name,
			pe.state_desc AS permission_state
		FROM sys.server_permissions pe
		JOIN sys.server_principals pr ON pr.principal_id = pe.grantee_principal_id
		LEFT JOIN sys.endpoints e
			ON pe.class_desc = 'ENDPOINT' AND e.endpoint_id = pe.major_id
		WHERE pr.type <> 'R'
		ORDER BY pr.name, pe.permission_name`

	// Rodam contra o banco ativo da conexão.
	databaseRoleMembersQuery = `
		SELECT
			DB_NAME() AS database_name,
			u.name AS user_name,
			ISNULL(sp.name, '') AS login_name,
			r.name AS role_name
		FROM sys.database_role_members rm
		JOIN sys.database_principals r ON r.principal_id = rm.role_principal_id
		JOIN sys.database_principals u ON u.principal_id = rm.member_principal_id
		LEFT JOIN sys.server_principals sp ON sp.sid = u.sid
		ORDER BY u.name, r.name`

	databasePermissionsQuery = `
		SELECT
			DB_NAME() AS database_name,
			u.name AS user_name,
			ISNULL(sp.name, '') AS login_name,
			pe.class_desc AS object_type,
			ISNULL(SCHEMA_NAME(o.schema_id), '') AS schema_name,
			ISNULL(o.name, '') AS object_name,
			pe.permission_name,
			pe.state_desc AS permission_state
		FROM sys.database_permissions pe
		JOIN sys.database_principals u ON u.principal_id = pe.grantee_principal_id
		LEFT JOIN sys.objects o
			ON pe.class_desc = 'OBJECT_OR_COLUMN' AND o.object_id = pe.major_id
		LEFT JOIN sys.server_principals sp ON sp.sid = u.sid
		WHERE u.principal_id > 4
		ORDER BY u.name, pe.permission_name`
)
