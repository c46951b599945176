package main

import (
	"testing"

	"github.com/danmuck/boincctl/internal/models"
)

func TestParseVersion(t *testing.T) {
	got, err := parseVersion([]string{"8", "1", "0"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *got.Major != 8 || *got.Minor != 1 || *got.Release != 0 {
		t.Fatalf("got %+v", got)
	}
	if _, err := parseVersion([]string{"8", "one", "0"}); err == nil {
		t.Fatalf("expected error for non-numeric part")
	}
}

func TestParseComponent(t *testing.T) {
	if c, err := parseComponent("gpu"); err != nil || c != models.ComponentGPU {
		t.Fatalf("got %v, %v", c, err)
	}
	if _, err := parseComponent("disk"); err == nil {
		t.Fatalf("expected error for unknown component")
	}
}

func TestParseRunMode(t *testing.T) {
	if m, err := parseRunMode("restore"); err != nil || m != models.RunModeRestore {
		t.Fatalf("got %v, %v", m, err)
	}
	if _, err := parseRunMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
