package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

func TestHTMLReportDocumentShape(t *testing.T) {
	var buf strings.Builder
	w := NewHTMLReportWriter(&buf, "report.html")

	require.NoError(t, w.Open("Audit - SRV1"))
	require.NoError(t, w.Heading(entity.SectionTop, "server-overview", "Server Overview"))
	require.NoError(t, w.Paragraph("Edition & version"))
	require.NoError(t, w.Heading(entity.SectionSub, "databases", "Databases"))
	require.NoError(t, w.Table([]string{"Database"}, [][]string{{"master"}, {"sales"}}))
	require.NoError(t, w.Close())

	out := buf.String()

	// Cabeçalho e rodapé do streaming: estilo no topo, script de navegação no fim.
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Less(t, strings.Index(out, "<style>"), strings.Index(out, "<h2"))
	assert.Greater(t, strings.Index(out, "<script>"), strings.Index(out, "</table>"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</html>"))

	// Cabeçalhos carregam a classe marcadora e o id de âncora.
	assert.Contains(t, out, `<h2 class="rpt-sec" id="server-overview">Server Overview</h2>`)
	assert.Contains(t, out, `<h3 class="rpt-sec" id="databases">Databases</h3>`)

	// A tabela vem dentro do container colapsável, fechado por padrão.
	assert.Contains(t, out, `<div class="fold">`)
	assert.Contains(t, out, `<div class="fold-toggle">2 row(s)</div>`)
	assert.NotContains(t, out, `<div class="fold open">`)

	// O título aparece escapado uma vez no <title> e uma no <h1>.
	assert.Equal(t, 2, strings.Count(out, "Audit - SRV1"))
}

func TestHTMLReportEscapesContent(t *testing.T) {
	var buf strings.Builder
	w := NewHTMLReportWriter(&buf, "report.html")

	require.NoError(t, w.Open("<script>alert(1)</script>"))
	require.NoError(t, w.Heading(entity.SectionTop, "s", `O'Brien & <friends>`))
	require.NoError(t, w.Table([]string{"col<b>"}, [][]string{{`<img src=x>`}}))
	require.NoError(t, w.Close())

	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "O&#39;Brien &amp; &lt;friends&gt;")
	assert.Contains(t, out, "&lt;img src=x&gt;")
}

func TestHTMLReportLifecycleGuards(t *testing.T) {
	var buf strings.Builder
	w := NewHTMLReportWriter(&buf, "report.html")

	// Emitir antes de abrir é erro de saída.
	err := w.Paragraph("early")
	var outErr *types.OutputError
	require.ErrorAs(t, err, &outErr)

	require.NoError(t, w.Open("t"))
	err = w.Open("t")
	require.ErrorAs(t, err, &outErr)

	require.NoError(t, w.Close())
	err = w.Paragraph("late")
	require.ErrorAs(t, err, &outErr)
}

func TestHTMLReportTOCScriptCoversBothLevels(t *testing.T) {
	var buf strings.Builder
	w := NewHTMLReportWriter(&buf, "report.html")

	require.NoError(t, w.Open("t"))
	require.NoError(t, w.Close())

	// O script do rodapé monta o sumário a partir da classe marcadora e
	// rebaixa h3 para o segundo nível.
	out := buf.String()
	assert.Contains(t, out, "querySelectorAll('.rpt-sec')")
	assert.Contains(t, out, "'H3'")
	assert.Contains(t, out, "toc-list")
}
