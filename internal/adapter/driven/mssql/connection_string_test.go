package mssql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
)

func TestBuildConnectionStringIntegrated(t *testing.T) {
	target := entity.Target{
		Host:     `db01\PROD`,
		Database: "master",
		Mode:     entity.AuthIntegrated,
	}

	cs := buildConnectionString(target)
	parts := strings.Split(cs, ";")

	assert.Contains(t, parts, `server=db01\PROD`)
	assert.Contains(t, parts, "database=master")
	assert.Contains(t, parts, "trusted_connection=yes")
	assert.NotContains(t, cs, "user id=")
	assert.NotContains(t, cs, "password=")
}

func TestBuildConnectionStringCredentialed(t *testing.T) {
	target := entity.Target{
		Host:     "db01",
		Database: "sales",
		Mode:     entity.AuthCredentialed,
		Username: "auditor",
		Password: "s3cret",
	}

	cs := buildConnectionString(target)
	parts := strings.Split(cs, ";")

	assert.Contains(t, parts, "user id=auditor")
	assert.Contains(t, parts, "password=s3cret")
	assert.NotContains(t, parts, "trusted_connection=yes")
}

func TestBuildConnectionStringCommonAttributes(t *testing.T) {
	cs := buildConnectionString(entity.Target{Host: "db01", Mode: entity.AuthIntegrated})

	assert.Contains(t, cs, "app name=mssql-security-audit")
	assert.Contains(t, cs, "encrypt=true")
	assert.Contains(t, cs, "TrustServerCertificate=true")
	// Sem banco explícito a chave database fica de fora.
	assert.NotContains(t, cs, "database=")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "1", formatValue(true))
	assert.Equal(t, "0", formatValue(false))
	assert.Equal(t, "42", formatValue(int64(42)))
}
