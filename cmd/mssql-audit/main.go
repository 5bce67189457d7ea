package main

import (
	"fmt"
	"os"

	"github.com/diillson/mssql-security-audit-go/internal/adapter/driven/config"
	"github.com/diillson/mssql-security-audit-go/internal/adapter/driven/export"
	"github.com/diillson/mssql-security-audit-go/internal/adapter/driven/mssql"
	"github.com/diillson/mssql-security-audit-go/internal/adapter/driving/cli"
	"github.com/diillson/mssql-security-audit-go/internal/application/usecase"
	"github.com/diillson/mssql-security-audit-go/internal/catalog"
	"github.com/diillson/mssql-security-audit-go/pkg/console"
	"github.com/diillson/mssql-security-audit-go/pkg/logging"
	"github.com/diillson/mssql-security-audit-go/pkg/version"
)

func main() {
	// O logger precisa existir antes do cobra rodar, então o modo verboso é
	// detectado direto nos argumentos.
	logger := logging.New(verboseRequested(os.Args[1:]))
	defer logger.Sync()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	mssqlRepo := mssql.NewMSSQLRepository(logger)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	auditUseCase := usecase.NewAuditUseCase(
		mssqlRepo,
		exportRepo,
		configRepo,
		consoleImpl,
		logger,
		catalog.Builtin(),
	)

	// Define as dependências no aplicativo CLI
	app.SetAuditUseCase(auditUseCase)
	app.SetConfigRepository(configRepo)
	app.SetConsole(consoleImpl)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func verboseRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
