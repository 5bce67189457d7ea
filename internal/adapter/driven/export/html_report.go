package export

import (
	"fmt"
	"html"
	"io"

	"github.com/diillson/mssql-security-audit-go/internal/domain/entity"
	"github.com/diillson/mssql-security-audit-go/internal/shared/types"
)

// HTMLReportWriter é um sink de streaming, não um buffer: cada evento é
// escrito imediatamente e não há rollback. Um crash no meio do run deixa um
// documento truncado e inválido.
type HTMLReportWriter struct {
	w      io.Writer
	path   string
	opened bool
	closed bool
}

// NewHTMLReportWriter cria um renderer sobre o writer informado.
func NewHTMLReportWriter(w io.Writer, path string) *HTMLReportWriter {
	return &HTMLReportWriter{w: w, path: path}
}

const reportStyle = `
body { margin: 0; font-family: "Segoe UI", Arial, sans-serif; color: #222; }
nav#toc { position: fixed; top: 0; left: 0; bottom: 0; width: 260px;
  overflow-y: auto; background: #1e2a38; color: #dde5ee; padding: 16px; }
nav#toc h1 { font-size: 15px; text-transform: uppercase; letter-spacing: 1px; }
nav#toc ul { list-style: none; padding: 0; margin: 0; }
nav#toc li { margin: 4px 0; }
nav#toc li.toc-sub { margin-left: 16px; font-size: 13px; }
nav#toc a { color: #9fc3e8; text-decoration: none; }
nav#toc a:hover { text-decoration: underline; }
main { margin-left: 292px; padding: 24px 32px; }
h1 { color: #1e2a38; }
h2.rpt-sec { border-bottom: 2px solid #1e2a38; padding-bottom: 4px; margin-top: 36px; }
h3.rpt-sec { color: #37516e; margin-top: 24px; }
p.rpt-fail { color: #a01818; font-weight: bold; }
div.fold { margin: 8px 0 16px 0; border: 1px solid #c9d4df; }
div.fold-toggle { cursor: pointer; background: #eef3f8; padding: 6px 10px;
  font-size: 13px; user-select: none; }
div.fold-toggle::before { content: "▸ "; }
div.fold.open div.fold-toggle::before { content: "▾ "; }
div.fold-body { display: none; overflow-x: auto; }
div.fold.open div.fold-body { display: block; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th { background: #37516e; color: #fff; text-align: left; padding: 5px 8px; }
td { border-bottom: 1px solid #dbe3ea; padding: 4px 8px; vertical-align: top; }
tr:nth-child(even) td { background: #f6f9fb; }
`

const reportScript = `
(function () {
  var list = document.getElementById('toc-list');
  var heads = document.querySelectorAll('.rpt-sec');
  for (var i = 0; i < heads.length; i++) {
    var h = heads[i];
    var li = document.createElement('li');
    if (h.tagName === 'H3') { li.className = 'toc-sub'; }
    var a = document.createElement('a');
    a.href = '#' + h.id;
    a.textContent = h.textContent;
    li.appendChild(a);
    list.appendChild(li);
  }
  var folds = document.querySelectorAll('.fold');
  for (var j = 0; j < folds.length; j++) {
    (function (fold) {
      fold.querySelector('.fold-toggle').addEventListener('click', function () {
        fold.classList.toggle('open');
      });
    })(folds[j]);
  }
})();
`

// Open escreve o cabeçalho do documento: bloco de estilo e o placeholder de
// navegação vazio. Deve ser chamado exatamente uma vez, antes de qualquer
// outra chamada de render.
func (r *HTMLReportWriter) Open(title string) error {
	if r.opened {
		return &types.OutputError{Path: r.path, Err: fmt.Errorf("report already opened")}
	}
	r.opened = true

	header := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
<nav id="toc"><h1>Contents</h1><ul id="toc-list"></ul></nav>
<main>
<h1>%s</h1>
`, html.EscapeString(title), reportStyle, html.EscapeString(title))

	return r.write(header)
}

// Heading emite um cabeçalho de seção com a classe marcadora usada pelo
// script de navegação. Ids duplicados são erro do chamador, não guardado aqui.
func (r *HTMLReportWriter) Heading(level entity.SectionLevel, anchor, title string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	tag := "h2"
	if level == entity.SectionSub {
		tag = "h3"
	}
	return r.write(fmt.Sprintf("<%s class=\"rpt-sec\" id=\"%s\">%s</%s>\n",
		tag, html.EscapeString(anchor), html.EscapeString(title), tag))
}

// Paragraph emite um parágrafo de texto livre.
func (r *HTMLReportWriter) Paragraph(text string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	return r.write(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(text)))
}

// Table emite uma tabela dentro de um container colapsável, fechado por
// padrão para manter a página escaneável.
func (r *HTMLReportWriter) Table(columns []string, rows [][]string) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}

	out := fmt.Sprintf("<div class=\"fold\"><div class=\"fold-toggle\">%d row(s)</div><div class=\"fold-body\"><table>\n<thead><tr>", len(rows))
	for _, col := range columns {
		out += "<th>" + html.EscapeString(col) + "</th>"
	}
	out += "</tr></thead>\n<tbody>\n"
	for _, row := range rows {
		out += "<tr>"
		for _, cell := range row {
			out += "<td>" + html.EscapeString(cell) + "</td>"
		}
		out += "</tr>\n"
	}
	out += "</tbody>\n</table></div></div>\n"

	return r.write(out)
}

// Close escreve o script de rodapé que monta o sumário em dois níveis a
// partir dos cabeçalhos e liga o clique-para-expandir de cada container.
// Deve ser chamado exatamente uma vez, depois de todas as seções.
func (r *HTMLReportWriter) Close() error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	r.closed = true
	if err := r.write(fmt.Sprintf("</main>\n<script>%s</script>\n</body>\n</html>\n", reportScript)); err != nil {
		return err
	}
	if closer, ok := r.w.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return &types.OutputError{Path: r.path, Err: err}
		}
	}
	return nil
}

func (r *HTMLReportWriter) ensureOpen() error {
	if !r.opened {
		return &types.OutputError{Path: r.path, Err: fmt.Errorf("report not opened")}
	}
	if r.closed {
		return &types.OutputError{Path: r.path, Err: fmt.Errorf("report already closed")}
	}
	return nil
}

func (r *HTMLReportWriter) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return &types.OutputError{Path: r.path, Err: err}
	}
	return nil
}
