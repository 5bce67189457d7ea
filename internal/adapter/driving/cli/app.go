package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diillson/mssql-security-audit-go/internal/application/usecase"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
	"github.com/diillson/mssql-security-audit-go/pkg/version"
)

// Variável de ambiente aceita no lugar do prompt interativo de senha.
const passwordEnvVar = "MSSQL_AUDIT_PASSWORD"

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd      *cobra.Command
	auditUseCase *usecase.AuditUseCase
	configRepo   repository.ConfigRepository
	console      types.ConsoleInterface
	version      string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "mssql-audit",
		Short:   "SQL Server Security Audit CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "MSSQL Security Audit version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("server", "s", "", "SQL Server host or host\\instance to audit")
	rootCmd.PersistentFlags().StringP("database", "d", "", "Restrict the audit to a single database (default: all databases)")
	rootCmd.PersistentFlags().BoolP("integrated", "E", false, "Use integrated (trusted) authentication")
	rootCmd.PersistentFlags().StringP("username", "U", "", "SQL login to authenticate with")
	rootCmd.PersistentFlags().String("sections", types.SectionAll, "Report sections to produce: All, ChecklistAudit or UserManagement")
	rootCmd.PersistentFlags().String("catalog", "", "Path to a YAML check catalog that replaces the built-in benchmark")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the additional export files (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Additional export types: csv, json, pdf")
	rootCmd.PersistentFlags().String("dir", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Overwrite an existing report without asking")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging to stderr")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	server, _ := app.rootCmd.Flags().GetString("server")
	database, _ := app.rootCmd.Flags().GetString("database")
	integrated, _ := app.rootCmd.Flags().GetBool("integrated")
	username, _ := app.rootCmd.Flags().GetString("username")
	sections, _ := app.rootCmd.Flags().GetString("sections")
	catalogFile, _ := app.rootCmd.Flags().GetString("catalog")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	force, _ := app.rootCmd.Flags().GetBool("force")
	verbose, _ := app.rootCmd.Flags().GetBool("verbose")

	args := &types.CLIArgs{
		ConfigFile:  configFile,
		Server:      server,
		Database:    database,
		Integrated:  integrated,
		Username:    username,
		Sections:    sections,
		CatalogFile: catalogFile,
		ReportName:  reportName,
		ReportType:  reportType,
		Dir:         dir,
		Force:       force,
		Verbose:     verbose,
	}

	// O arquivo de configuração preenche apenas o que a linha de comando
	// deixou em branco; flags explícitas sempre vencem.
	if configFile != "" {
		config, err := app.configRepo.LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(args, config, app.rootCmd)
	}

	if args.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		args.Dir = cwd
	} else {
		absDir, err := filepath.Abs(args.Dir)
		if err != nil {
			return nil, err
		}
		args.Dir = absDir
	}

	return args, nil
}

// mergeConfig aplica os valores do arquivo nos campos não informados via flag.
func mergeConfig(args *types.CLIArgs, config *types.Config, cmd *cobra.Command) {
	if args.Server == "" {
		args.Server = config.Server
	}
	if args.Database == "" {
		args.Database = config.Database
	}
	if !cmd.Flags().Changed("integrated") {
		args.Integrated = config.Integrated
	}
	if args.Username == "" {
		args.Username = config.Username
	}
	if !cmd.Flags().Changed("sections") && config.Sections != "" {
		args.Sections = config.Sections
	}
	if args.CatalogFile == "" {
		args.CatalogFile = config.CatalogFile
	}
	if args.ReportName == "" {
		args.ReportName = config.ReportName
	}
	if len(args.ReportType) == 0 {
		args.ReportType = config.ReportType
	}
	if args.Dir == "" {
		args.Dir = config.Dir
	}
	if !cmd.Flags().Changed("force") {
		args.Force = config.Force
	}
}

// validateArgs verifica os argumentos antes de qualquer conexão.
func (app *CLIApp) validateArgs(args *types.CLIArgs) error {
	if args.Server == "" {
		return errors.New("a target server is required (--server)")
	}
	if !types.ValidSection(args.Sections) {
		return fmt.Errorf("invalid --sections value %q (expected All, ChecklistAudit or UserManagement)", args.Sections)
	}
	if args.Integrated && args.Username != "" {
		return errors.New("--integrated and --username are mutually exclusive")
	}
	if !args.Integrated && args.Username == "" {
		return errors.New("credentialed authentication requires --username (or use --integrated)")
	}
	return nil
}

// resolvePassword obtém a senha para autenticação por credenciais: primeiro a
// variável de ambiente, senão o prompt mascarado. Nunca há flag de senha.
func (app *CLIApp) resolvePassword(args *types.CLIArgs) error {
	if args.Integrated {
		return nil
	}
	if password, ok := os.LookupEnv(passwordEnvVar); ok && password != "" {
		args.Password = password
		return nil
	}
	password, err := app.console.PromptSecret(fmt.Sprintf("Password for login %q", args.Username))
	if err != nil {
		return fmt.Errorf("could not read password: %w", err)
	}
	if password == "" {
		return errors.New("a password is required for credentialed authentication")
	}
	args.Password = password
	return nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	if err := app.validateArgs(cliArgs); err != nil {
		return err
	}
	if err := app.resolvePassword(cliArgs); err != nil {
		return err
	}

	// Executa a auditoria
	ctx := context.Background()
	err = app.auditUseCase.RunAudit(ctx, cliArgs)
	if errors.Is(err, types.ErrUserAborted) {
		app.console.LogInfo("Aborted, the existing report was left untouched.")
		return nil
	}
	return err
}

// SetAuditUseCase sets the audit use case for the CLI app.
func (app *CLIApp) SetAuditUseCase(useCase *usecase.AuditUseCase) {
	app.auditUseCase = useCase
}

// SetConfigRepository sets the configuration repository for the CLI app.
func (app *CLIApp) SetConfigRepository(repo repository.ConfigRepository) {
	app.configRepo = repo
}

// SetConsole sets the console implementation for the CLI app.
func (app *CLIApp) SetConsole(console types.ConsoleInterface) {
	app.console = console
}
