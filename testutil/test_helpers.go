// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

// FatalRecorder stands in for logger.Fatal. The process keeps running, so
// code under test must return after calling Fatal.
type FatalRecorder struct {
	Called bool
	Msg    string
	Fields []zap.Field
}

func (f *FatalRecorder) fatal(msg string, fields ...zap.Field) {
	f.Called = true
	f.Msg = msg
	f.Fields = fields
}

// CaptureFatal swaps logger.Fatal for a recorder until the test ends.
func CaptureFatal(t testing.TB) *FatalRecorder {
	t.Helper()
	rec := &FatalRecorder{}
	orig := logger.Fatal
	logger.Fatal = rec.fatal
	t.Cleanup(func() { logger.Fatal = orig })
	return rec
}

// WithEnv sets key for the rest of the test and runs fn with logger.Fatal
// captured.
func WithEnv(t testing.TB, key, value string, fn func(fatal *FatalRecorder)) {
	t.Helper()
	t.Setenv(key, value)
	fn(CaptureFatal(t))
}
