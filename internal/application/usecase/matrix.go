package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// matrixSource é uma fonte contribuinte da matriz. Novas fontes entram na
// lista de montagem sem tocar nas existentes.
type matrixSource struct {
	name  string
	fetch func(ctx context.Context) ([]entity.AuthorizationRow, error)
}

// BuildMatrix monta a matriz de autorização a partir de todas as fontes, na
// ordem: identidades de login, roles de servidor, permissões de servidor e,
// por banco, roles e permissões de banco. Falha de consulta em uma fonte é
// registrada e as demais continuam; falha de conexão é fatal. O mapeamento
// login → usuário é coletado à parte e nunca entra na matriz.
func (uc *AuditUseCase) BuildMatrix(ctx context.Context, serverName string, databases []string) ([]entity.AuthorizationRow, []entity.LoginMapping, []string, error) {
	sources := []matrixSource{
		{name: "server logins", fetch: func(ctx context.Context) ([]entity.AuthorizationRow, error) {
			return uc.loginIdentityRows(ctx, serverName)
		}},
		{name: "server role membership", fetch: func(ctx context.Context) ([]entity.AuthorizationRow, error) {
			return uc.serverRoleRows(ctx, serverName)
		}},
		{name: "server permissions", fetch: func(ctx context.Context) ([]entity.AuthorizationRow, error) {
			return uc.serverPermissionRows(ctx, serverName)
		}},
	}
	for _, database := range databases {
		database := database
		sources = append(sources,
			matrixSource{
				name: fmt.Sprintf("database role membership (%s)", database),
				fetch: func(ctx context.Context) ([]entity.AuthorizationRow, error) {
					return uc.databaseRoleRows(ctx, database)
				},
			},
			matrixSource{
				name: fmt.Sprintf("database permissions (%s)", database),
				fetch: func(ctx context.Context) ([]entity.AuthorizationRow, error) {
					return uc.databasePermissionRows(ctx, database)
				},
			},
		)
	}

	var rows []entity.AuthorizationRow
	var failed []string

	status := uc.console.Status("Building authorization matrix...")
	for _, source := range sources {
		sourceRows, err := source.fetch(ctx)
		if err != nil {
			var connErr *types.ConnectionError
			if errors.As(err, &connErr) {
				status.Stop()
				return nil, nil, nil, err
			}
			uc.logger.Warn("matrix source failed",
				zap.String("source", source.name), zap.Error(err))
			failed = append(failed, fmt.Sprintf("%s: %s", source.name, err))
			continue
		}
		rows = append(rows, sourceRows...)
	}
	status.Stop()

	mappings, err := uc.repo.GetLoginMappings(ctx)
	if err != nil {
		var connErr *types.ConnectionError
		if errors.As(err, &connErr) {
			return nil, nil, nil, err
		}
		uc.logger.Warn("login mappings failed", zap.Error(err))
		failed = append(failed, fmt.Sprintf("login/user mappings: %s", err))
	}

	entity.SortMatrix(rows)
	return rows, mappings, failed, nil
}

// loginIdentityRows semeia a matriz com uma linha de identidade por login.
func (uc *AuditUseCase) loginIdentityRows(ctx context.Context, serverName string) ([]entity.AuthorizationRow, error) {
	logins, err := uc.repo.GetServerLogins(ctx)
	if err != nil {
		return nil, err
	}

	var rows []entity.AuthorizationRow
	for _, login := range logins {
		if entity.ExcludedPrincipal(login.LoginName) {
			continue
		}
		server := login.ServerName
		if server == "" {
			server = serverName
		}
		rows = append(rows, entity.AuthorizationRow{
			LoginName:  login.LoginName,
			ServerName: server,
			LoginType:  login.LoginType,
		})
	}
	return rows, nil
}

func (uc *AuditUseCase) serverRoleRows(ctx context.Context, serverName string) ([]entity.AuthorizationRow, error) {
	members, err := uc.repo.GetServerRoleMembers(ctx)
	if err != nil {
		return nil, err
	}

	var rows []entity.AuthorizationRow
	for _, member := range members {
		if entity.ExcludedPrincipal(member.MemberName) {
			continue
		}
		row := entity.AuthorizationRow{
			LoginName:   member.MemberName,
			ServerName:  serverName,
			LoginType:   member.MemberType,
			SrvRoleName: member.RoleName,
		}
		if member.CreateDate != "" {
			row.Notes = fmt.Sprintf("login created %s, modified %s", member.CreateDate, member.ModifyDate)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (uc *AuditUseCase) serverPermissionRows(ctx context.Context, serverName string) ([]entity.AuthorizationRow, error) {
	permissions, err := uc.repo.GetServerPermissions(ctx)
	if err != nil {
		return nil, err
	}

	var rows []entity.AuthorizationRow
	for _, permission := range permissions {
		if entity.ExcludedPrincipal(permission.GranteeName) {
			continue
		}
		rows = append(rows, entity.AuthorizationRow{
			LoginName:          permission.GranteeName,
			ServerName:         serverName,
			LoginType:          permission.GranteeType,
			SrvObjectType:      permission.ObjectType,
			SrvObjectName:      permission.ObjectName,
			SrvPermissionName:  permission.PermissionName,
			SrvPermissionState: permission.PermissionState,
		})
	}
	return rows, nil
}

// databaseRoleRows coleta as associações de role de um banco, religando a
// conexão para ele e restaurando o banco original ao final.
func (uc *AuditUseCase) databaseRoleRows(ctx context.Context, database string) ([]entity.AuthorizationRow, error) {
	var members []entity.DatabaseRoleMember
	err := uc.withDatabase(ctx, database, func(fctx context.Context) error {
		var ferr error
		members, ferr = uc.repo.GetDatabaseRoleMembers(fctx)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	var rows []entity.AuthorizationRow
	for _, member := range members {
		if entity.ExcludedPrincipal(principalName(member.LoginName, member.UserName)) {
			continue
		}
		rows = append(rows, entity.AuthorizationRow{
			LoginName:  member.LoginName,
			DBName:     database,
			DBUserName: member.UserName,
			DBRoleName: member.RoleName,
		})
	}
	return rows, nil
}

func (uc *AuditUseCase) databasePermissionRows(ctx context.Context, database string) ([]entity.AuthorizationRow, error) {
	var permissions []entity.DatabasePermission
	err := uc.withDatabase(ctx, database, func(fctx context.Context) error {
		var ferr error
		permissions, ferr = uc.repo.GetDatabasePermissions(fctx)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	var rows []entity.AuthorizationRow
	for _, permission := range permissions {
		if entity.ExcludedPrincipal(principalName(permission.LoginName, permission.UserName)) {
			continue
		}
		rows = append(rows, entity.AuthorizationRow{
			LoginName:         permission.LoginName,
			DBName:            database,
			DBUserName:        permission.UserName,
			DBSchemaName:      permission.SchemaName,
			DBObjectName:      permission.ObjectName,
			DBObjectType:      permission.ObjectType,
			DBPermissionName:  permission.PermissionName,
			DBPermissionState: permission.PermissionState,
		})
	}
	return rows, nil
}

// principalName resolve o nome usado no filtro de exclusão: o login quando o
// usuário de banco está mapeado, senão o próprio usuário.
func principalName(loginName, userName string) string {
	if loginName != "" {
		return loginName
	}
	return userName
}

// emitLoginMappings escreve a tabela lateral de mapeamento login → usuário.
func (uc *AuditUseCase) emitLoginMappings(renderer repository.ReportRenderer, mappings []entity.LoginMapping) error {
	if err := renderer.Heading(entity.SectionTop, "login-mappings", "Login to User Mappings"); err != nil {
		return err
	}
	if len(mappings) == 0 {
		return renderer.Paragraph("No login to user mappings were reported by the server.")
	}

	rows := make([][]string, 0, len(mappings))
	for _, mapping := range mappings {
		rows = append(rows, []string{mapping.LoginName, mapping.Database, mapping.UserName, mapping.Alias})
	}
	return renderer.Table([]string{"Login", "Database", "User", "Alias"}, rows)
}

// emitMatrix escreve a matriz de autorização e as fontes que falharam.
func (uc *AuditUseCase) emitMatrix(renderer repository.ReportRenderer, rows []entity.AuthorizationRow, failedSources []string) error {
	if err := renderer.Heading(entity.SectionTop, "authorization-matrix", "Authorization Matrix"); err != nil {
		return err
	}
	if err := renderer.Paragraph(fmt.Sprintf(
		"%d authorization record(s) collected across server and database scopes. "+
			"Well-known administrative, internal and service accounts are excluded.", len(rows))); err != nil {
		return err
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, row.Cells())
	}
	if err := renderer.Table(entity.MatrixColumns, cells); err != nil {
		return err
	}

	if len(failedSources) > 0 {
		for _, source := range failedSources {
			if err := renderer.Paragraph("Source unavailable: " + source); err != nil {
				return err
			}
		}
	}
	return nil
}
