package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/mssql-security-audit-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$      /$$  /$$$$$$   /$$$$$$   /$$$$$$  /$$             /$$$$$$                  /$$ /$$   /$$
        | $$$    /$$$ /$$__  $$ /$$__  $$ /$$__  $$| $$            /$$__  $$                | $$|__/  | $$
        | $$$$  /$$$$| $$  \__/| $$  \__/| $$  \ $$| $$           | $$  \ $$ /$$   /$$  /$$$$$$$ /$$ /$$$$$$
        | $$ $$/$$ $$|  $$$$$$ |  $$$$$$ | $$  | $$| $$           | $$$$$$$$| $$  | $$ /$$__  $$| $$|_  $$_/
        | $$  $$$| $$ \____  $$ \____  $$| $$  | $$| $$           | $$__  $$| $$  | $$| $$  | $$| $$  | $$
        | $$\  $ | $$ /$$  \ $$ /$$  \ $$| $$/$$ $$| $$           | $$  | $$| $$  | $$| $$  | $$| $$  | $$ /$$
        | $$ \/  | $$|  $$$$$$/|  $$$$$$/|  $$$$$$/| $$$$$$$$     | $$  | $$|  $$$$$$/|  $$$$$$$| $$  |  $$$$/
        |__/     |__/ \______/  \______/  \____ $$$|________/     |__/  |__/ \______/  \_______/|__/   \___/
                                               \__/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("MSSQL Security Audit CLI (v%s)", formattedVersion)))
}
