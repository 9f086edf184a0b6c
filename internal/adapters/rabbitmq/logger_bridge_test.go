package rabbitmq

import (
	"errors"
	"testing"

	"search-service/internal/core/port"
)

type recordedEntry struct {
	level  string
	msg    string
	err    error
	fields port.Fields
}

type recordingLogger struct {
	entries []recordedEntry
}

func (l *recordingLogger) Info(msg string, fields port.Fields) {
	l.entries = append(l.entries, recordedEntry{level: "info", msg: msg, fields: fields})
}
func (l *recordingLogger) Warn(msg string, fields port.Fields) {
	l.entries = append(l.entries, recordedEntry{level: "warn", msg: msg, fields: fields})
}
func (l *recordingLogger) Debug(msg string, fields port.Fields) {
	l.entries = append(l.entries, recordedEntry{level: "debug", msg: msg, fields: fields})
}
func (l *recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.entries = append(l.entries, recordedEntry{level: "error", msg: msg, err: err, fields: fields})
}
func (l *recordingLogger) WithFields(fields port.Fields) port.LoggerPort { return l }

func TestPkgLoggerBridge(t *testing.T) {
	rec := &recordingLogger{}
	bridge := NewPkgLoggerBridge(rec)

	bridge.Info("connected", "url", "amqp://localhost", "attempt", 2)
	bridge.Warn("odd pairs", "key", "value", 42, "skipped", "dangling")
	bridge.Error(errors.New("closed"), "reconnect failed", "attempt", 3)

	if len(rec.entries) != 3 {
		t.Fatalf("got %d entries", len(rec.entries))
	}
	first := rec.entries[0]
	if first.level != "info" || first.fields["url"] != "amqp://localhost" || first.fields["attempt"] != 2 {
		t.Fatalf("first entry = %+v", first)
	}
	second := rec.entries[1].fields
	if len(second) != 1 || second["key"] != "value" {
		t.Fatalf("non-string keys and dangling values must be dropped, got %v", second)
	}
	last := rec.entries[2]
	if last.level != "error" || last.err == nil || last.fields["attempt"] != 3 {
		t.Fatalf("error entry = %+v", last)
	}
}
