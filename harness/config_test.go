package harness

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Threads != runtime.NumCPU() {
		t.Errorf("threads = %d, want %d", cfg.Threads, runtime.NumCPU())
	}
	if cfg.Iterations != 100000 {
		t.Errorf("iterations = %d, want 100000", cfg.Iterations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Threads: 1, Iterations: 1}, false},
		{"zero permits means one", Config{Threads: 2, Iterations: 5, Permits: 0}, false},
		{"with timeout", Config{Threads: 2, Iterations: 5, Timeout: time.Second}, false},
		{"zero threads", Config{Threads: 0, Iterations: 1}, true},
		{"negative threads", Config{Threads: -3, Iterations: 1}, true},
		{"zero iterations", Config{Threads: 1, Iterations: 0}, true},
		{"negative permits", Config{Threads: 1, Iterations: 1, Permits: -1}, true},
		{"negative timeout", Config{Threads: 1, Iterations: 1, Timeout: -time.Second}, true},
	}

	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", tt.name, err)
		}
	}

	if got := (Config{}).permits(); got != 1 {
		t.Errorf("permits() = %d, want 1", got)
	}
}
