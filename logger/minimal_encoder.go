package logger

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  exporter  node feasible  vr:router-1"

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorTimeCode      = "\x1b[38;5;107m" // mid forest green, timestamps
	colorComponentA    = "\x1b[38;5;108m" // bright leaf green
	colorComponentB    = "\x1b[38;5;65m"  // deep forest green
	colorComponentC    = "\x1b[38;5;208m" // warm orange
	colorMessageDim    = "\x1b[38;5;223m" // soft beige, default message text
	colorID            = "\x1b[38;5;109m" // blue-green, identifiers (node/link/client)
	colorNumber        = "\x1b[38;5;108m" // bright green, counts and durations
	colorWarnFg        = "\x1b[38;5;179m"
	colorWarnBg        = "\x1b[48;5;58m"
	colorErrFg         = "\x1b[38;5;167m"
	colorErrBg         = "\x1b[48;5;52m"
)

func colorizeMessage(msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "propagate") || strings.Contains(lower, "recompute") ||
		strings.Contains(lower, "feasible") || strings.Contains(lower, "interest"):
		return colorComponentA
	case strings.Contains(lower, "client") || strings.Contains(lower, "register") ||
		strings.Contains(lower, "connected") || strings.Contains(lower, "blocked"):
		return colorComponentB
	case strings.Contains(lower, "starting") || strings.Contains(lower, "started") ||
		strings.Contains(lower, "listening") || strings.Contains(lower, "config"):
		return colorComponentC
	default:
		return colorMessageDim
	}
}

// applyBracketColor colorizes bracketed contexts like [vr:router-1] or
// [queue] within a message, leaving the rest in the base message color.
func applyBracketColor(msg string) string {
	bracketPattern := regexp.MustCompile(`\[([^\]]+)\]`)
	base := colorizeMessage(msg)

	var result strings.Builder
	lastIndex := 0

	matches := bracketPattern.FindAllStringSubmatchIndex(msg, -1)
	for _, match := range matches {
		textBefore := msg[lastIndex:match[0]]
		if textBefore != "" {
			result.WriteString(base)
			result.WriteString(colorizeSymbols(textBefore))
			result.WriteString(colorReset)
		}

		bracketStart, bracketEnd := match[0], match[1]
		result.WriteString(colorID)
		result.WriteString(msg[bracketStart:bracketEnd])
		result.WriteString(colorReset)

		lastIndex = bracketEnd
	}

	remaining := msg[lastIndex:]
	if remaining != "" {
		result.WriteString(base)
		result.WriteString(colorizeSymbols(remaining))
		result.WriteString(colorReset)
	}

	return result.String()
}

// colorizeSymbols highlights the glyphs logger/symbol.go tags events with.
func colorizeSymbols(text string) string {
	for _, glyph := range []string{NodeSym, LinkSym, ClientSym, QueueSym} {
		text = strings.ReplaceAll(text, glyph, colorID+glyph+colorReset)
	}
	return text
}

func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarnFg + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorErrBg + colorErrFg + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorErrBg + colorErrFg + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens dotted component names: ifmap.sender -> i.sender;
// a name without a dot, such as exporter, is returned unchanged.
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

type minimalEncoder struct {
	zapcore.Encoder // embedded base encoder handles field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colorTimeCode)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponentA)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(applyBracketColor(ent.Message))

	if len(fields) > 0 {
		if rendered := extractFieldValues(fields); rendered != "" {
			final.AppendString("  ")
			final.AppendString(rendered)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	if field.Type == zapcore.StringType {
		return field.String
	}

	if field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type ||
		field.Type == zapcore.Int16Type || field.Type == zapcore.Int8Type ||
		field.Type == zapcore.Uint64Type || field.Type == zapcore.Uint32Type ||
		field.Type == zapcore.Uint16Type || field.Type == zapcore.Uint8Type {
		return fmt.Sprintf("%d", field.Integer)
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// extractFieldValues pulls just the values from structured fields, with the
// node/link pair rendered as a compact "(3 nodes, 1 links)" summary.
//
// Input: {"node": "vr:router-1", "client": "router-1", "duration_ms": 3}
// Output: "vr:router-1 router-1 3ms"
func extractFieldValues(fields []zapcore.Field) string {
	var values []string
	var nodeCount, linkCount string

	for _, field := range fields {
		switch field.Key {
		case FieldNode, FieldLink, FieldClient:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorID+val+colorReset)
			}
		case FieldCount:
			nodeCount = getFieldValue(field)
		case FieldTotalCount:
			linkCount = getFieldValue(field)
		case FieldDurationMS:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorNumber+val+colorReset+"ms")
			}
		case FieldQueueSize:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorNumber+val+colorReset+" queued")
			}
		}
	}

	if nodeCount != "" && linkCount != "" {
		values = append(values, colorMessageDim+"("+colorNumber+nodeCount+colorReset+colorMessageDim+
			" nodes, "+colorNumber+linkCount+colorReset+colorMessageDim+" links)"+colorReset)
	}

	if len(values) == 0 {
		return ""
	}

	return strings.Join(values, " ")
}
