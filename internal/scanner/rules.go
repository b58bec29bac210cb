package scanner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Severity levels, from least to most severe.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Rule is one detection pattern evaluated against submitted code.
type Rule struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Severity    string `yaml:"severity" json:"severity"`
	Pattern     string `yaml:"pattern" json:"pattern"`
}

// defaultRules is the built-in rule set used when no rules file is configured.
var defaultRules = []Rule{
	{
		ID:          "aws-access-key",
		Description: "AWS access key ID",
		Severity:    SeverityCritical,
		Pattern:     `AKIA[0-9A-Z]{16}`,
	},
	{
		ID:          "private-key",
		Description: "PEM private key material",
		Severity:    SeverityCritical,
		Pattern:     `-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`,
	},
	{
		ID:          "hardcoded-password",
		Description: "Hardcoded password assignment",
		Severity:    SeverityHigh,
		Pattern:     `(?i)password\s*(=|:=|:)\s*["'][^"']{4,}["']`,
	},
	{
		ID:          "generic-api-key",
		Description: "Hardcoded API key or token assignment",
		Severity:    SeverityHigh,
		Pattern:     `(?i)(api[_-]?key|auth[_-]?token|secret[_-]?key)\s*(=|:=|:)\s*["'][A-Za-z0-9_\-]{16,}["']`,
	},
	{
		ID:          "eval-call",
		Description: "Dynamic code evaluation",
		Severity:    SeverityMedium,
		Pattern:     `\beval\s*\(`,
	},
	{
		ID:          "weak-hash",
		Description: "Weak cryptographic hash",
		Severity:    SeverityLow,
		Pattern:     `(?i)\b(md5|sha1)\s*\(`,
	},
}

// rulesFile is the YAML document shape for an external rules file.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rules file. The file replaces the built-in set
// entirely; it must contain at least one rule.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	for _, r := range f.Rules {
		if r.ID == "" || r.Pattern == "" {
			return nil, fmt.Errorf("rules file %s: every rule needs an id and a pattern", path)
		}
	}

	return f.Rules, nil
}
