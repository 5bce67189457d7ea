package entity

// AuthMode seleciona como a conexão de auditoria se autentica no servidor.
type AuthMode string

const (
	AuthIntegrated   AuthMode = "integrated"
	AuthCredentialed AuthMode = "credentialed"
)

// Target identifies the SQL Server instance under audit. Immutable after the
// run starts, except for the active Database name during database enumeration.
type Target struct {
	Host     string
	Database string
	Mode     AuthMode
	Username string
	Password string
}
