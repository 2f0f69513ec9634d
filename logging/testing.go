package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender logs through tb.Log, which ties each line to the test that wrote it. Times are
// in the local timezone.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that writes to the given test.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

// Write logs the formatted entry. If the fields cannot be encoded, the rest of the line is still
// logged.
func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := formatLine(entry, fields)
	tapp.tb.Log(line)
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
