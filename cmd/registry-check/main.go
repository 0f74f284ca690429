// Command registry-check builds the entity capability registry against an
// in-memory store and verifies that every workspace kind exposes the full
// capability set. Intended for CI: a missing capability exits non-zero.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"canvascore/internal/core"
	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

var exitFunc = os.Exit

type kindReport struct {
	Kind         string   `json:"kind"`
	Capabilities []string `json:"capabilities"`
	Missing      []string `json:"missing,omitempty"`
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "emit the capability report as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	reports := buildReports()
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(stderr, "encode report: %v\n", err)
			return 1
		}
	}

	failed := false
	for _, r := range reports {
		if len(r.Missing) == 0 {
			continue
		}
		failed = true
		fmt.Fprintf(stderr, "kind %s missing capabilities: %v\n", r.Kind, r.Missing)
	}
	if failed {
		return 1
	}
	if !asJSON {
		fmt.Fprintf(stdout, "Registry check passed: %d kinds, %d capabilities each.\n", len(reports), len(domain.Capabilities()))
	}
	return 0
}

// buildReports assembles the registry over an empty in-memory store and
// reports which capabilities each kind carries. The capability table is
// wired from the store at startup, so an empty store exercises the same
// code paths production does.
func buildReports() []kindReport {
	store := memory.NewStore(nil)
	registry := core.BuildRegistry(store, core.NewSelectionState(), core.NewZapLogger(nil))

	kinds := domain.Kinds()
	reports := make([]kindReport, 0, len(kinds))
	for _, kind := range kinds {
		r := kindReport{Kind: string(kind)}
		bundle, ok := registry.Bundle(kind)
		for _, cap := range domain.Capabilities() {
			if ok && bundle.Has(cap) {
				r.Capabilities = append(r.Capabilities, string(cap))
			} else {
				r.Missing = append(r.Missing, string(cap))
			}
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Kind < reports[j].Kind })
	return reports
}
