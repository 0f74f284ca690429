package main

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"canvascore/pkg/domain"
)

func TestCLIPasses(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cli(nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Registry check passed") {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestCLIJSONReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cli([]string{"-json"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	var reports []kindReport
	if err := json.Unmarshal(stdout.Bytes(), &reports); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(reports) != len(domain.Kinds()) {
		t.Fatalf("expected %d kinds, got %d", len(domain.Kinds()), len(reports))
	}
	for _, r := range reports {
		if len(r.Missing) != 0 {
			t.Fatalf("kind %s missing capabilities %v", r.Kind, r.Missing)
		}
		if len(r.Capabilities) != len(domain.Capabilities()) {
			t.Fatalf("kind %s capabilities %v", r.Kind, r.Capabilities)
		}
	}
}

func TestCLIBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2 for bad flag, got %d", code)
	}
}

func TestBuildReportsCoversEveryKind(t *testing.T) {
	reports := buildReports()
	seen := map[string]bool{}
	for _, r := range reports {
		seen[r.Kind] = true
	}
	for _, kind := range domain.Kinds() {
		if !seen[string(kind)] {
			t.Fatalf("kind %s absent from report", kind)
		}
	}
}
