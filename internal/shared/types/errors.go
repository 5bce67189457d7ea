package types

import (
	"errors"
	"fmt"
)

// ErrUserAborted indica que o usuário recusou sobrescrever o relatório existente.
var ErrUserAborted = errors.New("aborted by user: existing report left untouched")

// ConnectionError é fatal: sem uma conexão válida nenhuma etapa posterior pode rodar.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failure during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError é não-fatal: a seção ou fonte dona da consulta é marcada como
// falha e o pipeline continua com a próxima entrada.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (query: %s)", e.Err, truncateQuery(e.Query))
}

func (e *QueryError) Unwrap() error { return e.Err }

// OutputError é fatal: um documento quebrado no meio do stream não tem reparo,
// então o run aborta e o arquivo parcial fica no disco, visivelmente incompleto.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cannot write report %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

func truncateQuery(q string) string {
	const max = 120
	if len(q) <= max {
		return q
	}
	return q[:max] + "..."
}
