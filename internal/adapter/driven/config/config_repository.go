package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/domain/repository"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileData, err := readRegularFile(filePath)
	if err != nil {
		return nil, err
	}

	var config types.Config

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", filepath.Ext(filePath))
	}

	return &config, nil
}

// LoadCheckCatalog carrega um catálogo de checks em YAML que substitui o
// catálogo embutido. A ordem do arquivo é preservada no relatório.
func (r *ConfigRepositoryImpl) LoadCheckCatalog(filePath string) ([]entity.CheckDescriptor, error) {
	fileData, err := readRegularFile(filePath)
	if err != nil {
		return nil, err
	}

	var catalog struct {
		Checks []entity.CheckDescriptor `yaml:"checks"`
	}
	if err := yaml.Unmarshal(fileData, &catalog); err != nil {
		return nil, fmt.Errorf("error parsing check catalog: %w", err)
	}

	if len(catalog.Checks) == 0 {
		return nil, fmt.Errorf("check catalog %s contains no checks", filePath)
	}
	for i, check := range catalog.Checks {
		if check.ID == "" || check.Query == "" {
			return nil, fmt.Errorf("check catalog entry %d is missing id or query", i+1)
		}
	}

	return catalog.Checks, nil
}

func readRegularFile(filePath string) ([]byte, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return fileData, nil
}
