package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors with hints
//	1 (-v)      - + progress, startup summary, client connect/disconnect
//	2 (-vv)     - + interest/advertised changes, timing, whitelist checks
//	3 (-vvv)    - + walker/queue/sender internal flow
//	4 (-vvvv)   - + rendered message bodies, full queue dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // command/introspection output
	OutputErrors                           // errors with hints and resolution steps
	OutputUserStatus                       // final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress      // progress indicators
	OutputStartup       // startup banners, config summary
	OutputClientStatus  // client connect/register/unregister/disconnect
	OutputOperationInfo // high-level operation summaries

	// Level 2 (-vv) - Detailed
	OutputInterestChanges   // a node/link's interest or advertised set changed
	OutputTiming            // operation timing (e.g. "propagate took 3ms")
	OutputConfig            // config values loaded/applied
	OutputWhitelistChecks   // whitelist permission decisions
	OutputGraphStats        // node/link counts in the configuration graph

	// Level 3 (-vvv) - Debug
	OutputWalkerFlow   // walker propagate/recompute steps
	OutputQueueFlow    // queue join/leave/marker moves
	OutputSenderFlow   // sender marker traversal and batching decisions
	OutputInternalFlow // internal operation flow (function entry/exit)

	// Level 4 (-vvvv) - Full dump
	OutputMessageBody // rendered per-client message payloads
	OutputDataDump    // full data structure contents
	OutputQueueDump   // full update queue contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	// Level 0 - Always shown
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	// Level 1 - Informational
	OutputProgress:      VerbosityInfo,
	OutputStartup:       VerbosityInfo,
	OutputClientStatus:  VerbosityInfo,
	OutputOperationInfo: VerbosityInfo,

	// Level 2 - Detailed
	OutputInterestChanges: VerbosityDebug,
	OutputTiming:          VerbosityDebug,
	OutputConfig:          VerbosityDebug,
	OutputWhitelistChecks: VerbosityDebug,
	OutputGraphStats:      VerbosityDebug,

	// Level 3 - Debug
	OutputWalkerFlow:   VerbosityTrace,
	OutputQueueFlow:    VerbosityTrace,
	OutputSenderFlow:   VerbosityTrace,
	OutputInternalFlow: VerbosityTrace,

	// Level 4 - Full dump
	OutputMessageBody: VerbosityAll,
	OutputDataDump:    VerbosityAll,
	OutputQueueDump:   VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:         "results",
	OutputErrors:          "errors",
	OutputUserStatus:      "status",
	OutputProgress:        "progress",
	OutputStartup:         "startup",
	OutputClientStatus:    "client-status",
	OutputOperationInfo:   "operation-info",
	OutputInterestChanges: "interest-changes",
	OutputTiming:          "timing",
	OutputConfig:          "config",
	OutputWhitelistChecks: "whitelist-checks",
	OutputGraphStats:      "graph-stats",
	OutputWalkerFlow:      "walker-flow",
	OutputQueueFlow:       "queue-flow",
	OutputSenderFlow:      "sender-flow",
	OutputInternalFlow:    "internal-flow",
	OutputMessageBody:     "message-body",
	OutputDataDump:        "data-dump",
	OutputQueueDump:       "queue-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "results and errors only"
	case VerbosityInfo:
		return "results, errors, progress, client status"
	case VerbosityDebug:
		return "above + interest changes, timing, whitelist checks"
	case VerbosityTrace:
		return "above + walker/queue/sender flow"
	case VerbosityAll:
		return "above + message bodies, full queue dumps"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}

// Walker/queue/sender output helpers

// ShouldShowWalkerFlow returns true if walker propagate/recompute steps should be logged
func ShouldShowWalkerFlow(verbosity int) bool {
	return ShouldOutput(verbosity, OutputWalkerFlow)
}

// ShouldShowQueueFlow returns true if queue join/leave/marker-move steps should be logged
func ShouldShowQueueFlow(verbosity int) bool {
	return ShouldOutput(verbosity, OutputQueueFlow)
}

// ShouldShowMessageBody returns true if rendered per-client payloads should be logged
func ShouldShowMessageBody(verbosity int) bool {
	return ShouldOutput(verbosity, OutputMessageBody)
}

// ShouldShowQueueDump returns true if the full update queue should be dumped
func ShouldShowQueueDump(verbosity int) bool {
	return ShouldOutput(verbosity, OutputQueueDump)
}

// Timing helpers

// SlowThresholdMS is the threshold in milliseconds above which timing is always shown
const SlowThresholdMS = 100

// ShouldShowTiming returns true if timing info should be displayed.
// Shows if: verbosity >= 2 (-vv) OR operation exceeded slow threshold.
func ShouldShowTiming(verbosity int, durationMS int64) bool {
	if durationMS >= SlowThresholdMS {
		return true // Always show slow operations
	}
	return ShouldOutput(verbosity, OutputTiming)
}

// ShouldShowTimingAlways returns true if timing should always be shown (slow operation)
func ShouldShowTimingAlways(durationMS int64) bool {
	return durationMS >= SlowThresholdMS
}
