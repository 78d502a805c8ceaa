package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestExitError(t *testing.T) {
	boom := errors.New("could not open tty")
	killed := fmt.Errorf("%w: %w", tea.ErrProgramKilled, context.Canceled)

	tests := []struct {
		name   string
		runErr error
		ctxErr error
		want   error
	}{
		{"clean exit", nil, nil, nil},
		{"clean exit after cancel", nil, context.Canceled, nil},
		{"program error", boom, nil, boom},
		{"program error kept when context is done", boom, context.Canceled, boom},
		{"killed by parent context", killed, context.Canceled, nil},
		{"killed without cancel", tea.ErrProgramKilled, nil, tea.ErrProgramKilled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitError(tt.runErr, tt.ctxErr)
			if !errors.Is(got, tt.want) || (got == nil) != (tt.want == nil) {
				t.Errorf("exitError(%v, %v) = %v, want %v", tt.runErr, tt.ctxErr, got, tt.want)
			}
		})
	}
}
