// Package logging monta o logger estruturado da aplicação. Fora do modo
// verboso o logger é um no-op: a saída normal do usuário é a do console.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New devolve um *zap.Logger pronto para uso. Com verbose ligado, logs de
// debug vão para stderr em formato legível; desligado, nada é emitido.
func New(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
