// Package scanner implements the rule-based source analysis that scanforge
// coordinators execute. It is deliberately self-contained: the coordinator
// only sees it through the work function signature.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentRules bounds the number of rules evaluated in parallel.
const maxConcurrentRules = 8

// Finding is one rule match in the submitted code.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Line        int    `json:"line"`
	Match       string `json:"match"`
}

// Report is the analysis result for one input.
type Report struct {
	Findings     []Finding `json:"findings"`
	RulesRun     int       `json:"rules_run"`
	LinesScanned int       `json:"lines_scanned"`
}

// Scanner evaluates a compiled rule set against submitted code.
type Scanner struct {
	rules []compiledRule
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// New creates a scanner from the given rules, compiling every pattern.
func New(rules []Rule) (*Scanner, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.ID, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return &Scanner{rules: compiled}, nil
}

// Default creates a scanner with the built-in rule set.
func Default() *Scanner {
	s, err := New(defaultRules)
	if err != nil {
		// The built-in patterns are covered by tests; a compile failure here
		// is a programming error.
		panic(fmt.Sprintf("scanner: built-in rules: %v", err))
	}
	return s
}

// Scan evaluates every rule over the input, rules running in parallel, and
// returns the aggregated findings ordered by line then rule ID.
func (s *Scanner) Scan(ctx context.Context, input []byte) (*Report, error) {
	lines := strings.Split(string(input), "\n")

	var mu sync.Mutex
	var findings []Finding

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRules)

	for _, rule := range s.rules {
		rule := rule
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i, line := range lines {
				match := rule.re.FindString(line)
				if match == "" {
					continue
				}
				mu.Lock()
				findings = append(findings, Finding{
					RuleID:      rule.ID,
					Description: rule.Description,
					Severity:    rule.Severity,
					Line:        i + 1,
					Match:       match,
				})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	return &Report{
		Findings:     findings,
		RulesRun:     len(s.rules),
		LinesScanned: len(lines),
	}, nil
}

// Work adapts the scanner to the coordinator's work function signature.
func (s *Scanner) Work(ctx context.Context, input []byte) (json.RawMessage, error) {
	report, err := s.Scan(ctx, input)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
