// The scanforge-worker binary runs a single scan in its own process. It reads
// one framed request from stdin, writes one framed message to stdout, and
// exits. The parent process owns the deadline and kills the worker outright
// when it expires, so nothing here watches the clock.
package main

import (
	"log"
	"os"

	"github.com/forgelabs/scanforge/internal/config"
	"github.com/forgelabs/scanforge/internal/scanner"
	"github.com/forgelabs/scanforge/internal/worker"
)

func main() {
	cfg := config.Load()

	sc := scanner.Default()
	if cfg.RulesPath != "" {
		rules, err := scanner.LoadRules(cfg.RulesPath)
		if err != nil {
			log.Fatalf("failed to load rules: %v", err)
		}
		sc, err = scanner.New(rules)
		if err != nil {
			log.Fatalf("failed to compile rules: %v", err)
		}
	}

	os.Exit(worker.Serve(os.Stdin, os.Stdout, sc.Work))
}
