package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalogIsWellFormed(t *testing.T) {
	checks := Builtin()
	require.NotEmpty(t, checks)

	seen := map[string]bool{}
	for _, check := range checks {
		assert.NotEmpty(t, check.ID)
		assert.NotEmpty(t, check.Description)
		assert.NotEmpty(t, check.Query)
		assert.False(t, seen[check.ID], "duplicate check id %s", check.ID)
		seen[check.ID] = true
	}
}

func TestBuiltinCatalogOrderFollowsBenchmarkNumbering(t *testing.T) {
	checks := Builtin()
	var last string
	for _, check := range checks {
		if last != "" {
			assert.True(t, benchmarkLess(last, check.ID),
				"check %s listed after %s", check.ID, last)
		}
		last = check.ID
	}
}

// benchmarkLess compara ids do tipo "2.13" numericamente por segmento.
func benchmarkLess(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			if len(as[i]) != len(bs[i]) {
				return len(as[i]) < len(bs[i])
			}
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

func TestConfigOptionQueriesNameTheOption(t *testing.T) {
	for _, check := range Builtin() {
		if len(check.Columns) == 3 && check.Columns[1] == "value_configured" {
			assert.Contains(t, check.Query, "sys.configurations")
			assert.Contains(t, check.Query, "WHERE name = '")
		}
	}
}
