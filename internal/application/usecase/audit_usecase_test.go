package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// --- Fakes ---

type fakeRepo struct {
	target  entity.Target
	active  string
	rebinds []string

	serverName     string
	properties     entity.ResultTable
	databases      []entity.DatabaseInfo
	userCounts     map[string]int
	countErrs      map[string]error
	rebindErrs     map[string]error
	logins         []entity.LoginIdentity
	mappings       []entity.LoginMapping
	roleMembers    []entity.ServerRoleMember
	serverPerms    []entity.ServerPermission
	serverPermsErr error
	dbRoleMembers  map[string][]entity.DatabaseRoleMember
	dbPerms        map[string][]entity.DatabasePermission

	queryTables map[string]entity.ResultTable
	queryErrs   map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		active:        "master",
		serverName:    "SRV1",
		userCounts:    map[string]int{},
		countErrs:     map[string]error{},
		rebindErrs:    map[string]error{},
		dbRoleMembers: map[string][]entity.DatabaseRoleMember{},
		dbPerms:       map[string][]entity.DatabasePermission{},
		queryTables:   map[string]entity.ResultTable{},
		queryErrs:     map[string]error{},
	}
}

func (f *fakeRepo) Connect(ctx context.Context, target entity.Target) error {
	f.target = target
	f.active = target.Database
	return nil
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) ActiveDatabase() string { return f.active }

func (f *fakeRepo) Rebind(ctx context.Context, database string) error {
	if err, ok := f.rebindErrs[database]; ok {
		return err
	}
	f.active = database
	f.rebinds = append(f.rebinds, database)
	return nil
}

func (f *fakeRepo) RunQuery(ctx context.Context, query string) (entity.ResultTable, error) {
	if err, ok := f.queryErrs[query]; ok {
		return entity.ResultTable{}, err
	}
	return f.queryTables[query], nil
}

func (f *fakeRepo) RunQueryMulti(ctx context.Context, query string) ([]entity.ResultTable, error) {
	table, err := f.RunQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return []entity.ResultTable{table}, nil
}

func (f *fakeRepo) GetServerProperties(ctx context.Context) (entity.ResultTable, error) {
	return f.properties, nil
}

func (f *fakeRepo) GetServerName(ctx context.Context) (string, error) {
	return f.serverName, nil
}

func (f *fakeRepo) ListDatabases(ctx context.Context) ([]entity.DatabaseInfo, error) {
	return f.databases, nil
}

func (f *fakeRepo) CountDatabaseUsers(ctx context.Context) (int, error) {
	if err, ok := f.countErrs[f.active]; ok {
		return 0, err
	}
	return f.userCounts[f.active], nil
}

func (f *fakeRepo) GetServerLogins(ctx context.Context) ([]entity.LoginIdentity, error) {
	return f.logins, nil
}

func (f *fakeRepo) GetLoginMappings(ctx context.Context) ([]entity.LoginMapping, error) {
	return f.mappings, nil
}

func (f *fakeRepo) GetServerRoleMembers(ctx context.Context) ([]entity.ServerRoleMember, error) {
	return f.roleMembers, nil
}

func (f *fakeRepo) GetServerPermissions(ctx context.Context) ([]entity.ServerPermission, error) {
	if f.serverPermsErr != nil {
		return nil, f.serverPermsErr
	}
	return f.serverPerms, nil
}

func (f *fakeRepo) GetDatabaseRoleMembers(ctx context.Context) ([]entity.DatabaseRoleMember, error) {
	return f.dbRoleMembers[f.active], nil
}

func (f *fakeRepo) GetDatabasePermissions(ctx context.Context) ([]entity.DatabasePermission, error) {
	return f.dbPerms[f.active], nil
}

type fakeRenderer struct {
	opened bool
	closed bool
	events []string
}

func (r *fakeRenderer) Open(title string) error {
	r.opened = true
	r.events = append(r.events, "open")
	return nil
}

func (r *fakeRenderer) Heading(level entity.SectionLevel, anchor, title string) error {
	tag := "h2"
	if level == entity.SectionSub {
		tag = "h3"
	}
	r.events = append(r.events, tag+":"+anchor)
	return nil
}

func (r *fakeRenderer) Paragraph(text string) error {
	r.events = append(r.events, "p:"+text)
	return nil
}

func (r *fakeRenderer) Table(columns []string, rows [][]string) error {
	r.events = append(r.events, fmt.Sprintf("table:%d", len(rows)))
	return nil
}

func (r *fakeRenderer) Close() error {
	r.closed = true
	r.events = append(r.events, "close")
	return nil
}

type fakeExportRepo struct {
	renderer  *fakeRenderer
	openCount int
}

func (e *fakeExportRepo) OpenHTMLReport(path string) (repository.ReportRenderer, error) {
	e.openCount++
	return e.renderer, nil
}

func (e *fakeExportRepo) ExportMatrixToCSV(rows []entity.AuthorizationRow, filename, dir string) (string, error) {
	return filepath.Join(dir, filename+".csv"), nil
}

func (e *fakeExportRepo) ExportMatrixToJSON(rows []entity.AuthorizationRow, filename, dir string) (string, error) {
	return filepath.Join(dir, filename+".json"), nil
}

func (e *fakeExportRepo) ExportSummaryToPDF(summary entity.AuditSummary, filename, dir string) (string, error) {
	return filepath.Join(dir, filename+".pdf"), nil
}

type fakeConfigRepo struct{}

func (c *fakeConfigRepo) LoadConfigFile(path string) (*types.Config, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConfigRepo) LoadCheckCatalog(path string) ([]entity.CheckDescriptor, error) {
	return nil, errors.New("not implemented")
}

type fakeConsole struct {
	confirmResult bool
	confirmAsked  int
}

func (c *fakeConsole) Print(a ...interface{})                     {}
func (c *fakeConsole) Printf(format string, a ...interface{})     {}
func (c *fakeConsole) Println(a ...interface{})                   {}
func (c *fakeConsole) LogInfo(format string, a ...interface{})    {}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {}
func (c *fakeConsole) LogError(format string, a ...interface{})   {}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {}

func (c *fakeConsole) Status(message string) types.StatusHandle         { return noopHandle{} }
func (c *fakeConsole) Progress(items []string) types.ProgressHandle     { return noopHandle{} }
func (c *fakeConsole) ProgressWithTotal(total int) types.ProgressHandle { return noopHandle{} }
func (c *fakeConsole) CreateTable() types.TableInterface                { return nil }

func (c *fakeConsole) Confirm(message string) bool {
	c.confirmAsked++
	return c.confirmResult
}

func (c *fakeConsole) PromptSecret(message string) (string, error) { return "", nil }

type noopHandle struct{}

func (noopHandle) Update(message string) {}
func (noopHandle) Increment()            {}
func (noopHandle) Stop()                 {}

func newTestUseCase(repo *fakeRepo, checks []entity.CheckDescriptor) (*AuditUseCase, *fakeRenderer, *fakeExportRepo, *fakeConsole) {
	renderer := &fakeRenderer{}
	exportRepo := &fakeExportRepo{renderer: renderer}
	console := &fakeConsole{}
	uc := NewAuditUseCase(repo, exportRepo, &fakeConfigRepo{}, console, nil, checks)
	return uc, renderer, exportRepo, console
}

// --- Testes ---

func TestRunAuditSectionOrderWithFailingCheck(t *testing.T) {
	repo := newFakeRepo()
	repo.queryTables["q-ok"] = entity.ResultTable{
		Columns: []string{"name", "value_in_use"},
		Rows:    [][]string{{"xp_cmdshell", "0"}},
	}
	repo.queryErrs["q-bad"] = &types.QueryError{Query: "q-bad", Err: errors.New("permission denied")}

	checks := []entity.CheckDescriptor{
		{ID: "2.16", Description: "xp_cmdshell", Query: "q-ok", Columns: []string{"name", "value_in_use"}},
		{ID: "5.4", Description: "server audits", Query: "q-bad"},
	}

	uc, renderer, _, _ := newTestUseCase(repo, checks)

	args := &types.CLIArgs{
		Server:   "srv1",
		Username: "auditor",
		Sections: types.SectionAll,
		Dir:      t.TempDir(),
		Force:    true,
	}
	require.NoError(t, uc.RunAudit(context.Background(), args))

	// Os dois checks aparecem na ordem do catálogo, mesmo com o segundo
	// falhando, e a matriz é a última seção de primeiro nível.
	var anchors []string
	for _, event := range renderer.events {
		if len(event) > 3 && (event[:3] == "h2:" || event[:3] == "h3:") {
			anchors = append(anchors, event)
		}
	}
	assert.Equal(t, []string{
		"h2:server-overview",
		"h3:databases",
		"h2:benchmark-checklist",
		"h3:check-2-16",
		"h3:check-5-4",
		"h2:login-mappings",
		"h2:authorization-matrix",
	}, anchors)

	assert.Contains(t, renderer.events, "p:Check failed: query failed: permission denied (query: q-bad)")
	assert.True(t, renderer.closed)
}

func TestRunChecklistPreservesCatalogOrderAcrossFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.queryErrs["q1"] = &types.QueryError{Query: "q1", Err: errors.New("deny")}
	repo.queryTables["q2"] = entity.ResultTable{Columns: []string{"name"}, Rows: [][]string{{"a"}}}
	repo.queryTables["q3"] = entity.ResultTable{Columns: []string{"name"}, Rows: [][]string{{"b"}}}

	checks := []entity.CheckDescriptor{
		{ID: "2.1", Description: "first", Query: "q1"},
		{ID: "2.2", Description: "second", Query: "q2", Columns: []string{"name"}},
		{ID: "2.3", Description: "third", Query: "q3", Columns: []string{"name"}},
	}

	uc, _, _, _ := newTestUseCase(repo, nil)
	sections, outcomes := uc.RunChecklist(context.Background(), checks)

	require.Len(t, sections, 3)
	require.Len(t, outcomes, 3)

	// A seção que falhou não carrega tabela; as demais carregam, e a ordem do
	// catálogo se mantém apesar da falha no meio do caminho.
	assert.Equal(t, "2.1 first", sections[0].Title)
	assert.True(t, sections[0].Failed)
	assert.Nil(t, sections[0].Table)
	assert.NotEmpty(t, sections[0].Text)

	assert.Equal(t, "2.2 second", sections[1].Title)
	assert.False(t, sections[1].Failed)
	require.NotNil(t, sections[1].Table)
	assert.Equal(t, [][]string{{"a"}}, sections[1].Table.Rows)

	assert.Equal(t, "2.3 third", sections[2].Title)
	require.NotNil(t, sections[2].Table)
	assert.Equal(t, [][]string{{"b"}}, sections[2].Table.Rows)
}

func TestRunAuditOverwriteDeclined(t *testing.T) {
	dir := t.TempDir()
	existing := ReportPath(dir, "srv1")
	require.NoError(t, os.WriteFile(existing, []byte("previous run"), 0644))

	uc, renderer, exportRepo, console := newTestUseCase(newFakeRepo(), nil)
	console.confirmResult = false

	args := &types.CLIArgs{
		Server:   "srv1",
		Username: "auditor",
		Sections: types.SectionAll,
		Dir:      dir,
	}
	err := uc.RunAudit(context.Background(), args)
	assert.ErrorIs(t, err, types.ErrUserAborted)

	// Nada foi aberto nem escrito: o relatório anterior permanece intacto.
	assert.Equal(t, 1, console.confirmAsked)
	assert.Zero(t, exportRepo.openCount)
	assert.False(t, renderer.opened)
	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(content))
}

func TestRunAuditForceSkipsConfirmation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ReportPath(dir, "srv1"), []byte("previous run"), 0644))

	uc, _, _, console := newTestUseCase(newFakeRepo(), nil)

	args := &types.CLIArgs{
		Server:   "srv1",
		Username: "auditor",
		Sections: types.SectionAll,
		Dir:      dir,
		Force:    true,
	}
	require.NoError(t, uc.RunAudit(context.Background(), args))
	assert.Zero(t, console.confirmAsked)
}

func TestEnumerateDatabasesCountsAndRestores(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.databases = []entity.DatabaseInfo{
		{Name: "alpha", CreateDate: now},
		{Name: "beta", CreateDate: now},
		{Name: "gamma", CreateDate: now},
	}
	repo.userCounts["alpha"] = 3
	repo.userCounts["beta"] = 0
	repo.userCounts["gamma"] = 12

	uc, _, _, _ := newTestUseCase(repo, nil)

	databases, err := uc.EnumerateDatabases(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, databases, 3)
	assert.Equal(t, 3, databases[0].UserCount)
	assert.Equal(t, 0, databases[1].UserCount)
	assert.Equal(t, 12, databases[2].UserCount)

	// A conexão terminou religada ao banco original.
	assert.Equal(t, "master", repo.ActiveDatabase())
	assert.Equal(t, []string{"alpha", "master", "beta", "master", "gamma", "master"}, repo.rebinds)
}

func TestEnumerateDatabasesCountFailureStillRestores(t *testing.T) {
	repo := newFakeRepo()
	repo.databases = []entity.DatabaseInfo{
		{Name: "alpha"},
		{Name: "broken"},
	}
	repo.userCounts["alpha"] = 2
	repo.countErrs["broken"] = &types.QueryError{Query: "count", Err: errors.New("deny")}

	uc, _, _, _ := newTestUseCase(repo, nil)

	databases, err := uc.EnumerateDatabases(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, databases, 2)
	assert.Equal(t, 2, databases[0].UserCount)
	assert.NotEmpty(t, databases[1].CountError)
	assert.Equal(t, "master", repo.ActiveDatabase())
}

func TestEnumerateDatabasesRebindFailureIsFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.databases = []entity.DatabaseInfo{{Name: "alpha"}}
	repo.rebindErrs["alpha"] = &types.ConnectionError{Op: "rebind", Err: errors.New("refused")}

	uc, _, _, _ := newTestUseCase(repo, nil)

	_, err := uc.EnumerateDatabases(context.Background(), "")
	var connErr *types.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestBuildMatrixExcludesWellKnownAccounts(t *testing.T) {
	repo := newFakeRepo()
	repo.logins = []entity.LoginIdentity{
		{LoginName: "sa", LoginType: "SQL_LOGIN"},
		{LoginName: `CORP\svcacct`, LoginType: "WINDOWS_LOGIN"},
		{LoginName: "##MS_PolicyEventProcessingLogin##", LoginType: "SQL_LOGIN"},
	}

	uc, _, _, _ := newTestUseCase(repo, nil)

	rows, _, failed, err := uc.BuildMatrix(context.Background(), "SRV1", nil)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, rows, 1)
	assert.Equal(t, `CORP\svcacct`, rows[0].LoginName)
	assert.Equal(t, "SRV1", rows[0].ServerName)
}

func TestBuildMatrixAbsorbsSourceFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.logins = []entity.LoginIdentity{{LoginName: "alice", LoginType: "SQL_LOGIN"}}
	repo.serverPermsErr = &types.QueryError{Query: "perms", Err: errors.New("deny")}

	uc, _, _, _ := newTestUseCase(repo, nil)

	rows, _, failed, err := uc.BuildMatrix(context.Background(), "SRV1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0], "server permissions")
}

func TestBuildMatrixCollectsDatabaseScopes(t *testing.T) {
	repo := newFakeRepo()
	repo.logins = []entity.LoginIdentity{{LoginName: "alice", LoginType: "SQL_LOGIN"}}
	repo.dbRoleMembers["sales"] = []entity.DatabaseRoleMember{
		{Database: "sales", UserName: "alice_u", LoginName: "alice", RoleName: "db_datareader"},
		{Database: "sales", UserName: "dbo", LoginName: "sa", RoleName: "db_owner"},
	}
	repo.dbPerms["sales"] = []entity.DatabasePermission{
		{Database: "sales", UserName: "alice_u", LoginName: "alice", ObjectType: "OBJECT",
			SchemaName: "dbo", ObjectName: "orders", PermissionName: "SELECT", PermissionState: "GRANT"},
	}

	uc, _, _, _ := newTestUseCase(repo, nil)

	rows, _, failed, err := uc.BuildMatrix(context.Background(), "SRV1", []string{"sales"})
	require.NoError(t, err)
	assert.Empty(t, failed)

	// Identidade + role de banco + permissão de banco, sem a linha do "sa",
	// e com a conexão de volta ao banco original.
	require.Len(t, rows, 3)
	assert.Equal(t, "master", repo.ActiveDatabase())

	var roleRow, permRow *entity.AuthorizationRow
	for i := range rows {
		if rows[i].DBRoleName != "" {
			roleRow = &rows[i]
		}
		if rows[i].DBPermissionName != "" {
			permRow = &rows[i]
		}
	}
	require.NotNil(t, roleRow)
	require.NotNil(t, permRow)
	assert.Equal(t, "db_datareader", roleRow.DBRoleName)
	assert.Equal(t, "sales", roleRow.DBName)
	assert.Equal(t, "SELECT", permRow.DBPermissionName)
	assert.Equal(t, "dbo", permRow.DBSchemaName)
}

func TestSectionSelectorLimitsOutput(t *testing.T) {
	repo := newFakeRepo()
	checks := []entity.CheckDescriptor{
		{ID: "2.1", Description: "ad hoc", Query: "q", Columns: []string{"name"}},
	}

	uc, renderer, _, _ := newTestUseCase(repo, checks)

	args := &types.CLIArgs{
		Server:   "srv1",
		Username: "auditor",
		Sections: types.SectionChecklistAudit,
		Dir:      t.TempDir(),
		Force:    true,
	}
	require.NoError(t, uc.RunAudit(context.Background(), args))

	joined := fmt.Sprint(renderer.events)
	assert.Contains(t, joined, "h2:benchmark-checklist")
	assert.NotContains(t, joined, "h2:authorization-matrix")
	assert.NotContains(t, joined, "h2:login-mappings")
}

func TestReportPathIsDeterministic(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp", "db01_security_audit.html"), ReportPath("/tmp", "db01"))
	// Caracteres de host inválidos em nomes de arquivo viram underscore.
	assert.Equal(t, filepath.Join("/tmp", "db01_PROD_security_audit.html"), ReportPath("/tmp", `db01\PROD`))
	assert.Equal(t, ReportPath("/tmp", "db01"), ReportPath("/tmp", "db01"))
}

func TestWithDatabaseRestoreFailureEscalates(t *testing.T) {
	repo := newFakeRepo()
	repo.active = "master"

	uc, _, _, _ := newTestUseCase(repo, nil)

	// A primeira religação funciona; a volta para master falha.
	callCount := 0
	repo.rebindErrs = map[string]error{}
	err := uc.withDatabase(context.Background(), "sales", func(ctx context.Context) error {
		callCount++
		repo.rebindErrs["master"] = &types.ConnectionError{Op: "rebind", Err: errors.New("gone")}
		return nil
	})

	assert.Equal(t, 1, callCount)
	var connErr *types.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}
