package logger

import "go.uber.org/zap"

// Symbol-aware logging helpers.
// These functions log with the symbol as a structured field, not in the message.
//
// Usage:
//
//	// Instead of:
//	logger.Infow(NodeSym + " node feasible", "node", n.Name)
//
//	// Use:
//	logger.NodeInfow("node feasible", "node", n.Name)
//
// This makes logs queryable by symbol and keeps messages clean.

// Glyphs tagging the kind of event a log line concerns.
const (
	NodeSym   = "●" // node state transitions
	LinkSym   = "→" // link state transitions
	ClientSym = "◆" // client registration/session events
	QueueSym  = "▤" // update queue and sender activity
)

// NodeInfow logs an info message tagged with the node symbol.
func NodeInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, NodeSym}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// NodeDebugw logs a debug message tagged with the node symbol.
func NodeDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, NodeSym}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// LinkInfow logs an info message tagged with the link symbol.
func LinkInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, LinkSym}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// LinkDebugw logs a debug message tagged with the link symbol.
func LinkDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, LinkSym}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// ClientInfow logs an info message tagged with the client symbol.
// Used for connect/register/unregister lifecycle events.
func ClientInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, ClientSym}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// ClientWarnw logs a warning message tagged with the client symbol.
// Used for blocked/slow-client backpressure events.
func ClientWarnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, ClientSym}, keysAndValues...)
		Logger.Warnw(msg, fields...)
	}
}

// ClientErrorw logs an error message tagged with the client symbol.
func ClientErrorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, ClientSym}, keysAndValues...)
		Logger.Errorw(msg, fields...)
	}
}

// QueueInfow logs an info message tagged with the queue symbol.
func QueueInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, QueueSym}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// QueueDebugw logs a debug message tagged with the queue symbol.
func QueueDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, QueueSym}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// WithSymbol returns a logger with the given symbol as a field.
// For ad-hoc symbol usage not covered by the helpers above.
func WithSymbol(symbol string) *zap.SugaredLogger {
	return Logger.With(FieldSymbol, symbol)
}

// SymbolInfow logs with any symbol - for dynamic symbol usage.
func SymbolInfow(symbol, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, symbol}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
