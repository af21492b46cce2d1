package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eugenenazirov/propcompare/internal/application"
	"github.com/eugenenazirov/propcompare/internal/config"
)

func TestCLIParsesDefaultCompareCommand(t *testing.T) {
	c := newCLI()
	command, err := c.app.Parse([]string{"a.properties", "b.yml", "-f", "html", "-o", "out.html", "--missing", "-"})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if command != c.compare.FullCommand() {
		t.Fatalf("expected compare command, got %s", command)
	}
	if got := strings.Join(*c.files, ","); got != "a.properties,b.yml" {
		t.Fatalf("unexpected files %s", got)
	}

	overrides := c.overrides()
	if *overrides.Format != "html" || *overrides.OutputFile != "out.html" || *overrides.MissingValue != "-" {
		t.Fatalf("unexpected overrides: %+v", overrides)
	}
	if overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("rate limit overrides must stay unset by default")
	}
}

func TestCLIParsesExplicitCompareCommand(t *testing.T) {
	c := newCLI()
	command, err := c.app.Parse([]string{"compare", "--no-color", "--workers", "2", "a.toml", "b.toml", "c.toml"})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if command != c.compare.FullCommand() {
		t.Fatalf("expected compare command, got %s", command)
	}
	if len(*c.files) != 3 || !*c.noColor || *c.workers != 2 {
		t.Fatalf("unexpected parsed flags: files=%v noColor=%v workers=%d", *c.files, *c.noColor, *c.workers)
	}
}

func TestCLIParsesServeCommand(t *testing.T) {
	c := newCLI()
	command, err := c.app.Parse([]string{"serve", "--port", "9000", "--rate-limit-rps", "0"})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if command != c.serve.FullCommand() {
		t.Fatalf("expected serve command, got %s", command)
	}
	overrides := c.overrides()
	if *overrides.Port != "9000" {
		t.Fatalf("unexpected port %s", *overrides.Port)
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero rate limit override")
	}
}

func TestRunCompare(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "dev.properties")
	second := filepath.Join(dir, "prod.yaml")
	if err := os.WriteFile(first, []byte("a=1\nb=2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("a: 1\nb: 3\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.Defaults()
	cfg.Format = "markdown"
	cfg.LogLevel = "error"

	var out bytes.Buffer
	if err := runCompare(cfg, []string{first, second}, &out); err != nil {
		t.Fatalf("mismatches must not be reported as errors: %v", err)
	}
	if !strings.Contains(out.String(), "❌ 1 key(s) have mismatched values.") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunCompareValidationError(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "error"

	err := runCompare(cfg, []string{"only-one.properties"}, &bytes.Buffer{})
	if !errors.Is(err, application.ErrNotEnoughFiles) {
		t.Fatalf("expected ErrNotEnoughFiles, got %v", err)
	}
}
