package cmd

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/careermate/internal/reminder"
)

func TestBatchExitCode(t *testing.T) {
	tests := []struct {
		name   string
		result *reminder.Result
		err    error
		expect int
		logged int
	}{
		{
			name:   "clean run",
			result: &reminder.Result{Scanned: 3, Eligible: 1, Sent: 1, Saved: true},
			expect: 0,
			logged: 1,
		},
		{
			name:   "sent but dates not saved",
			result: &reminder.Result{Scanned: 3, Eligible: 1, Sent: 1},
			err:    errors.New("persist reminder dates: disk full"),
			expect: 1,
			logged: 2,
		},
		{
			name:   "load failed",
			err:    errors.New("load contacts: missing"),
			expect: 1,
			logged: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.InfoLevel)

			if got := batchExitCode(zap.New(core), tt.result, tt.err); got != tt.expect {
				t.Fatalf("expected exit code %d, got %d", tt.expect, got)
			}
			if got := observed.Len(); got != tt.logged {
				t.Fatalf("expected %d log entries, got %d", tt.logged, got)
			}
		})
	}
}
