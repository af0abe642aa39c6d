package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			if err := Initialize(tt.jsonOutput); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}

			if Logger == nil {
				t.Error("Initialize() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}

			if Logger != nil {
				Logger.Sync()
				Logger = nil
			}
		})
	}
}

func TestInitializeWithVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zap.AtomicLevel
	}{
		{name: "user verbosity is warn+", verbosity: VerbosityUser, wantLevel: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{name: "info verbosity is info+", verbosity: VerbosityInfo, wantLevel: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{name: "trace verbosity is debug+", verbosity: VerbosityTrace, wantLevel: zap.NewAtomicLevelAt(zap.DebugLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			if err := InitializeWithVerbosity(true, tt.verbosity); err != nil {
				t.Fatalf("InitializeWithVerbosity() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("InitializeWithVerbosity() did not set global Logger")
			}
			if !Logger.Desugar().Core().Enabled(tt.wantLevel.Level()) {
				t.Errorf("expected level %v to be enabled at verbosity %d", tt.wantLevel.Level(), tt.verbosity)
			}
			Logger.Sync()
			Logger = nil
		})
	}
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name        string
		setupLogger bool
	}{
		{name: "Cleanup with initialized logger", setupLogger: true},
		{name: "Cleanup with nil logger", setupLogger: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setupLogger {
				Logger = newTestLogger(t)
			} else {
				Logger = nil
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Cleanup() panicked unexpectedly: %v", r)
				}
			}()

			Cleanup()

			if tt.setupLogger && Logger == nil {
				t.Error("Cleanup() should not nil out the logger")
			}
			Logger = nil
		})
	}
}

// newTestLogger creates a logger for testing without modifying global state
func newTestLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	zapLogger, err := config.Build()
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}

	return zapLogger.Sugar()
}

func TestLoggingFunctionsDoNotPanic(t *testing.T) {
	Logger = newTestLogger(t)
	defer func() {
		if Logger != nil {
			Logger.Sync()
			Logger = nil
		}
	}()

	t.Run("Info functions", func(t *testing.T) {
		Info("test")
		Infof("test %s", "format")
		Infow("test", "key", "value")
	})

	t.Run("Error functions", func(t *testing.T) {
		Error("test")
		Errorf("test %s", "format")
		Errorw("test", "key", "value")
	})

	t.Run("Warn functions", func(t *testing.T) {
		Warn("test")
		Warnf("test %s", "format")
		Warnw("test", "key", "value")
	})

	t.Run("Debug functions", func(t *testing.T) {
		Debug("test")
		Debugf("test %s", "format")
		Debugw("test", "key", "value")
	})

	t.Run("With nil logger (should not panic)", func(t *testing.T) {
		Logger = nil

		Info("test")
		Infof("test %s", "format")
		Infow("test", "key", "value")
		Error("test")
		Errorf("test %s", "format")
		Errorw("test", "key", "value")
		Warn("test")
		Warnf("test %s", "format")
		Warnw("test", "key", "value")
		Debug("test")
		Debugf("test %s", "format")
		Debugw("test", "key", "value")
	})
}

// BenchmarkInitialize benchmarks logger initialization
func BenchmarkInitialize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Logger = nil
		Initialize(false)
		if Logger != nil {
			Logger.Sync()
		}
	}
}

func newBenchmarkLogger() *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return zapLogger.Sugar()
}

// BenchmarkInfow benchmarks structured Info logging
func BenchmarkInfow(b *testing.B) {
	Logger = newBenchmarkLogger()
	defer func() {
		if Logger != nil {
			Logger.Sync()
			Logger = nil
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Infow("test message", "iteration", i, "key", "value")
	}
}

// BenchmarkParallelLogging benchmarks concurrent logging
func BenchmarkParallelLogging(b *testing.B) {
	Logger = newBenchmarkLogger()
	defer func() {
		if Logger != nil {
			Logger.Sync()
			Logger = nil
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			Infow("parallel log", "goroutine_iteration", i)
			i++
		}
	})
}
