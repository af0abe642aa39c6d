package logger

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(str, "")
}

func encode(t *testing.T, entry zapcore.Entry, fields []zapcore.Field) string {
	t.Helper()
	encoder := newMinimalEncoder()
	buf, err := encoder.EncodeEntry(entry, fields)
	if err != nil {
		t.Fatalf("EncodeEntry failed: %v", err)
	}
	return stripANSI(buf.String())
}

func TestEncodeEntryRendersTimeComponentAndMessage(t *testing.T) {
	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2026, 7, 30, 13, 4, 35, 0, time.UTC),
		LoggerName: "ifmap.exporter",
		Message:    "node feasible",
	}

	out := encode(t, entry, nil)

	if !strings.Contains(out, "13:04:35") {
		t.Errorf("expected formatted time in output, got %q", out)
	}
	if !strings.Contains(out, "i.exporter") {
		t.Errorf("expected abbreviated logger name, got %q", out)
	}
	if !strings.Contains(out, "node feasible") {
		t.Errorf("expected message text, got %q", out)
	}
}

func TestEncodeEntryOmitsLevelTagForInfo(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "info message"}
	out := encode(t, entry, nil)
	if strings.Contains(out, "WARN") || strings.Contains(out, "ERROR") {
		t.Errorf("info-level entries should not carry a level tag, got %q", out)
	}
}

func TestEncodeEntryTagsWarnAndError(t *testing.T) {
	warnOut := encode(t, zapcore.Entry{Level: zapcore.WarnLevel, Time: time.Now(), Message: "m"}, nil)
	if !strings.Contains(warnOut, "WARN") {
		t.Errorf("expected WARN tag, got %q", warnOut)
	}

	errOut := encode(t, zapcore.Entry{Level: zapcore.ErrorLevel, Time: time.Now(), Message: "m"}, nil)
	if !strings.Contains(errOut, "ERROR") {
		t.Errorf("expected ERROR tag, got %q", errOut)
	}
}

func TestExtractFieldValuesRendersKnownDomainFields(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "client registered"}
	fields := []zapcore.Field{
		zap.String(FieldClient, "router-1"),
		zap.Int64(FieldDurationMS, 42),
	}

	out := encode(t, entry, fields)

	if !strings.Contains(out, "router-1") {
		t.Errorf("expected client identifier in output, got %q", out)
	}
	if !strings.Contains(out, "42ms") {
		t.Errorf("expected duration rendering, got %q", out)
	}
}

func TestExtractFieldValuesRendersGraphStatsPair(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "graph summary"}
	fields := []zapcore.Field{
		zap.Int(FieldCount, 3),
		zap.Int(FieldTotalCount, 1),
	}

	out := encode(t, entry, fields)
	if !strings.Contains(out, "3 nodes, 1 links") {
		t.Errorf("expected combined node/link summary, got %q", out)
	}
}

func TestExtractFieldValuesIgnoresUnknownFields(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "m"}
	fields := []zapcore.Field{zap.String("unrelated_field", "should not appear")}

	out := encode(t, entry, fields)
	if strings.Contains(out, "should not appear") {
		t.Errorf("expected unknown fields to be omitted from the compact console line, got %q", out)
	}
}

func TestAbbreviateName(t *testing.T) {
	cases := map[string]string{
		"exporter":     "exporter",
		"ifmap.sender": "i.sender",
		"walker":       "walker",
	}
	for in, want := range cases {
		if got := abbreviateName(in); got != want {
			t.Errorf("abbreviateName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColorizeSymbolsHighlightsKnownGlyphs(t *testing.T) {
	out := colorizeSymbols("client " + ClientSym + " registered")
	if !strings.Contains(out, colorID) {
		t.Errorf("expected glyph to be colorized, got %q", out)
	}
}
