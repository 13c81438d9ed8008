package main

import (
	"context"
	"testing"
)

func TestExecLineQuit(t *testing.T) {
	c := &cli{}
	ctx := context.Background()

	tests := []struct {
		line string
		quit bool
	}{
		{"exit", true},
		{"quit", true},
		{"", false},
		{"   ", false},
		{"nosuchcommand", false},
	}
	for _, tt := range tests {
		if got := c.execLine(ctx, tt.line); got != tt.quit {
			t.Errorf("execLine(%q) quit = %v, want %v", tt.line, got, tt.quit)
		}
	}
}
