package main

import (
	"errors"
	"io"

	"github.com/hsdatabase/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger returns a JSON logger at info level, or a console logger at
// debug level in development mode.
func newLogger(dev bool, out io.Writer) *zap.Logger {
	sink := zapcore.Lock(zapcore.AddSync(out))
	if dev {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(encoder, sink, zapcore.DebugLevel), zap.Development())
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, sink, zapcore.InfoLevel))
}

// errorFields extracts what is known about a failed update from err
func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var scriptErr *schema.ScriptError
	if errors.As(err, &scriptErr) {
		fields = append(fields, zap.Int("version", scriptErr.Version), zap.String("script", scriptErr.Name))
	}
	var stmtErr *schema.StatementExecutionError
	if errors.As(err, &stmtErr) {
		fields = append(fields, zap.Int("line", stmtErr.Line), zap.String("statement", stmtErr.Statement))
	}
	var incomplete *schema.IncompleteStatementError
	if errors.As(err, &incomplete) {
		fields = append(fields, zap.Int("line", incomplete.Line), zap.String("statement", incomplete.Statement))
	}
	var vce *schema.VersionConsistencyError
	if errors.As(err, &vce) {
		fields = append(fields, zap.Int64("rows_affected", vce.RowsAffected))
	}
	return fields
}
