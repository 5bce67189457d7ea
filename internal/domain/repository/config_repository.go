package repository

import (
	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// ConfigRepository defines the interface for configuration loading.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	LoadCheckCatalog(filePath string) ([]entity.CheckDescriptor, error)
}
