package repository

import (
	"context"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
)

// MSSQLRepository defines the interface for SQL Server interactions. The
// implementation owns the single live connection of the audit run.
type MSSQLRepository interface {
	// Connection lifecycle
	Connect(ctx context.Context, target entity.Target) error
	Close() error

	// ActiveDatabase reports the database the connection is currently bound to.
	ActiveDatabase() string

	// Rebind tears down and re-establishes the connection against another
	// database on the same server, preserving auth mode and credentials.
	Rebind(ctx context.Context, database string) error

	// Check execution
	RunQuery(ctx context.Context, query string) (entity.ResultTable, error)
	RunQueryMulti(ctx context.Context, query string) ([]entity.ResultTable, error)

	// Server inventory
	GetServerProperties(ctx context.Context) (entity.ResultTable, error)
	GetServerName(ctx context.Context) (string, error)
	ListDatabases(ctx context.Context) ([]entity.DatabaseInfo, error)
	CountDatabaseUsers(ctx context.Context) (int, error)

	// Authorization matrix sources
	GetServerLogins(ctx context.Context) ([]entity.LoginIdentity, error)
	GetLoginMappings(ctx context.Context) ([]entity.LoginMapping, error)
	GetServerRoleMembers(ctx context.Context) ([]entity.ServerRoleMember, error)
	GetServerPermissions(ctx context.Context) ([]entity.ServerPermission, error)
	GetDatabaseRoleMembers(ctx context.Context) ([]entity.DatabaseRoleMember, error)
	GetDatabasePermissions(ctx context.Context) ([]entity.DatabasePermission, error)
}
