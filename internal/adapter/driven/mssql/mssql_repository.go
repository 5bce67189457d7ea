package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // registra o driver "sqlserver"
	"go.uber.org/zap"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// MSSQLRepositoryImpl implementa o MSSQLRepository sobre database/sql com o
// driver go-mssqldb. Mantém exatamente uma conexão viva por vez.
type MSSQLRepositoryImpl struct {
	db     *sql.DB
	target entity.Target
	logger *zap.Logger
}

// NewMSSQLRepository cria uma nova implementação do MSSQLRepository.
func NewMSSQLRepository(logger *zap.Logger) repository.MSSQLRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MSSQLRepositoryImpl{logger: logger}
}

// buildConnectionString monta a connection string a partir do alvo,
// preservando o modo de autenticação escolhido.
func buildConnectionString(target entity.Target) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("server=%s", target.Host))
	if target.Database != "" {
		parts = append(parts, fmt.Sprintf("database=%s", target.Database))
	}

	if target.Mode == entity.AuthIntegrated {
		parts = append(parts, "trusted_connection=yes")
	} else {
		parts = append(parts, fmt.Sprintf("user id=%s", target.Username))
		parts = append(parts, fmt.Sprintf("password=%s", target.Password))
	}

	parts = append(parts, "app name=mssql-security-audit")
	parts = append(parts, "encrypt=true")
	parts = append(parts, "TrustServerCertificate=true")

	return strings.Join(parts, ";")
}

// Connect estabelece a conexão com o alvo. Falha de host ou de credencial é
// fatal para o run inteiro.
func (r *MSSQLRepositoryImpl) Connect(ctx context.Context, target entity.Target) error {
	db, err := sql.Open("sqlserver", buildConnectionString(target))
	if err != nil {
		return &types.ConnectionError{Op: "open", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return &types.ConnectionError{Op: "connect", Err: err}
	}

	r.db = db
	r.target = target
	r.logger.Info("connected to SQL Server",
		zap.String("host", target.Host),
		zap.String("database", target.Database),
		zap.String("mode", string(target.Mode)))
	return nil
}

// Close encerra a conexão ativa, se houver.
func (r *MSSQLRepositoryImpl) Close() error {
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// ActiveDatabase informa o banco ao qual a conexão está vinculada no momento.
func (r *MSSQLRepositoryImpl) ActiveDatabase() string {
	return r.target.Database
}

// Rebind derruba a conexão e a restabelece contra outro banco do mesmo
// servidor. Sem política de retry: falha aqui é fatal, porque tudo que vem
// depois depende de uma conexão ativa válida.
func (r *MSSQLRepositoryImpl) Rebind(ctx context.Context, database string) error {
	if r.db == nil {
		return &types.ConnectionError{Op: "rebind", Err: fmt.Errorf("no active connection")}
	}

	next := r.target
	next.Database = database

	db, err := sql.Open("sqlserver", buildConnectionString(next))
	if err != nil {
		return &types.ConnectionError{Op: "rebind", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return &types.ConnectionError{Op: "rebind", Err: err}
	}

	r.db.Close()
	r.db = db
	r.target = next
	r.logger.Debug("rebound connection", zap.String("database", database))
	return nil
}

// RunQuery executa uma consulta e devolve apenas o primeiro result set
// tabular. Falha vira QueryError e não invalida a conexão.
func (r *MSSQLRepositoryImpl) RunQuery(ctx context.Context, query string) (entity.ResultTable, error) {
	tables, err := r.RunQueryMulti(ctx, query)
	if err != nil {
		return entity.ResultTable{}, err
	}
	if len(tables) == 0 {
		return entity.ResultTable{}, nil
	}
	return tables[0], nil
}

// RunQueryMulti executa uma consulta e devolve a lista ordenada completa de
// result sets, necessária para procedures que emitem várias tabelas.
func (r *MSSQLRepositoryImpl) RunQueryMulti(ctx context.Context, query string) ([]entity.ResultTable, error) {
	r.logger.Debug("running query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &types.QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	var tables []entity.ResultTable
	for {
		table, err := scanTable(rows)
		if err != nil {
			return nil, &types.QueryError{Query: query, Err: err}
		}
		if len(table.Columns) > 0 {
			tables = append(tables, table)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: query, Err: err}
	}
	return tables, nil
}

// scanTable materializa o result set corrente como strings.
func scanTable(rows *sql.Rows) (entity.ResultTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return entity.ResultTable{}, err
	}

	table := entity.ResultTable{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return entity.ResultTable{}, err
		}

		cells := make([]string, len(cols))
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, rows.Err()
}

// formatValue normaliza os tipos do driver para texto de relatório.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetServerProperties retorna versão, edição e modo de autenticação do servidor.
func (r *MSSQLRepositoryImpl) GetServerProperties(ctx context.Context) (entity.ResultTable, error) {
	return r.RunQuery(ctx, serverPropertiesQuery)
}

// GetServerName retorna o nome do servidor reportado pelo próprio alvo.
func (r *MSSQLRepositoryImpl) GetServerName(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := r.db.QueryRowContext(ctx, serverNameQuery).Scan(&name); err != nil {
		return "", &types.QueryError{Query: serverNameQuery, Err: err}
	}
	if name.Valid {
		return name.String, nil
	}
	return "", nil
}

// ListDatabases enumera os bancos do alvo com a data de criação. A contagem
// de usuários é derivada depois, banco a banco, pelo caso de uso.
func (r *MSSQLRepositoryImpl) ListDatabases(ctx context.Context) ([]entity.DatabaseInfo, error) {
	rows, err := r.db.QueryContext(ctx, databaseListQuery)
	if err != nil {
		return nil, &types.QueryError{Query: databaseListQuery, Err: err}
	}
	defer rows.Close()

	var databases []entity.DatabaseInfo
	for rows.Next() {
		var info entity.DatabaseInfo
		if err := rows.Scan(&info.Name, &info.CreateDate); err != nil {
			return nil, &types.QueryError{Query: databaseListQuery, Err: err}
		}
		databases = append(databases, info)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: databaseListQuery, Err: err}
	}
	return databases, nil
}

// CountDatabaseUsers conta os principals de usuário do banco ativo.
func (r *MSSQLRepositoryImpl) CountDatabaseUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, databaseUserCountQuery).Scan(&count); err != nil {
		return 0, &types.QueryError{Query: databaseUserCountQuery, Err: err}
	}
	return count, nil
}

// GetServerLogins retorna os principals de nível servidor, excluindo roles.
func (r *MSSQLRepositoryImpl) GetServerLogins(ctx context.Context) ([]entity.LoginIdentity, error) {
	rows, err := r.db.QueryContext(ctx, serverLoginsQuery)
	if err != nil {
		return nil, &types.QueryError{Query: serverLoginsQuery, Err: err}
	}
	defer rows.Close()

	var logins []entity.LoginIdentity
	for rows.Next() {
		var l entity.LoginIdentity
		if err := rows.Scan(&l.LoginName, &l.LoginType, &l.ServerName); err != nil {
			return nil, &types.QueryError{Query: serverLoginsQuery, Err: err}
		}
		logins = append(logins, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: serverLoginsQuery, Err: err}
	}
	return logins, nil
}

// GetLoginMappings achata o relatório multi-result de mapeamento login/usuário
// numa única tabela lateral.
func (r *MSSQLRepositoryImpl) GetLoginMappings(ctx context.Context) ([]entity.LoginMapping, error) {
	tables, err := r.RunQueryMulti(ctx, loginMappingsQuery)
	if err != nil {
		return nil, err
	}

	var mappings []entity.LoginMapping
	for _, table := range tables {
		for _, row := range table.Rows {
			m := entity.LoginMapping{}
			if len(row) > 0 {
				m.LoginName = row[0]
			}
			if len(row) > 1 {
				m.Database = row[1]
			}
			if len(row) > 2 {
				m.UserName = row[2]
			}
			if len(row) > 3 {
				m.Alias = row[3]
			}
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

// GetServerRoleMembers retorna as associações de roles de servidor.
func (r *MSSQLRepositoryImpl) GetServerRoleMembers(ctx context.Context) ([]entity.ServerRoleMember, error) {
	rows, err := r.db.QueryContext(ctx, serverRoleMembersQuery)
	if err != nil {
		return nil, &types.QueryError{Query: serverRoleMembersQuery, Err: err}
	}
	defer rows.Close()

	var members []entity.ServerRoleMember
	for rows.Next() {
		var m entity.ServerRoleMember
		if err := rows.Scan(&m.RoleName, &m.MemberName, &m.MemberType, &m.CreateDate, &m.ModifyDate); err != nil {
			return nil, &types.QueryError{Query: serverRoleMembersQuery, Err: err}
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: serverRoleMembersQuery, Err: err}
	}
	return members, nil
}

// GetServerPermissions retorna as concessões explícitas no escopo do servidor.
func (r *MSSQLRepositoryImpl) GetServerPermissions(ctx context.Context) ([]entity.ServerPermission, error) {
	rows, err := r.db.QueryContext(ctx, serverPermissionsQuery)
	if err != nil {
		return nil, &types.QueryError{Query: serverPermissionsQuery, Err: err}
	}
	defer rows.Close()

	var perms []entity.ServerPermission
	for rows.Next() {
		var p entity.ServerPermission
		if err := rows.Scan(&p.GranteeName, &p.GranteeType, &p.ObjectType, &p.ObjectName, &p.PermissionName, &p.PermissionState); err != nil {
			return nil, &types.QueryError{Query: serverPermissionsQuery, Err: err}
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: serverPermissionsQuery, Err: err}
	}
	return perms, nil
}

// GetDatabaseRoleMembers retorna as associações de roles do banco ativo.
func (r *MSSQLRepositoryImpl) GetDatabaseRoleMembers(ctx context.Context) ([]entity.DatabaseRoleMember, error) {
	rows, err := r.db.QueryContext(ctx, databaseRoleMembersQuery)
	if err != nil {
		return nil, &types.QueryError{Query: databaseRoleMembersQuery, Err: err}
	}
	defer rows.Close()

	var members []entity.DatabaseRoleMember
	for rows.Next() {
		var m entity.DatabaseRoleMember
		if err := rows.Scan(&m.Database, &m.UserName, &m.LoginName, &m.RoleName); err != nil {
			return nil, &types.QueryError{Query: databaseRoleMembersQuery, Err: err}
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: databaseRoleMembersQuery, Err: err}
	}
	return members, nil
}

// GetDatabasePermissions retorna as concessões explícitas do banco ativo.
func (r *MSSQLRepositoryImpl) GetDatabasePermissions(ctx context.Context) ([]entity.DatabasePermission, error) {
	rows, err := r.db.QueryContext(ctx, databasePermissionsQuery)
	if err != nil {
		return nil, &types.QueryError{Query: databasePermissionsQuery, Err: err}
	}
	defer rows.Close()

	var perms []entity.DatabasePermission
	for rows.Next() {
		var p entity.DatabasePermission
		if err := rows.Scan(&p.Database, &p.UserName, &p.LoginName, &p.ObjectType, &p.SchemaName, &p.ObjectName, &p.PermissionName, &p.PermissionState); err != nil {
			return nil, &types.QueryError{Query: databasePermissionsQuery, Err: err}
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Query: databasePermissionsQuery, Err: err}
	}
	return perms, nil
}
