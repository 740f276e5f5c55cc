// Package injectionscan holds the SQL- and command-injection substring
// patterns shared by the command sandbox's phase-3 argument scan and the
// tool-argument-level scanner: both need the same safety net, just applied
// to different surfaces (a tokenized argv vs. a JSON argument map).
package injectionscan

import "regexp"

var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(DROP|DELETE|TRUNCATE|ALTER)\s+(TABLE|DATABASE|INDEX|SCHEMA)\b`),
	regexp.MustCompile(`(?i)\bUNION\s+(ALL\s+)?SELECT\b`),
	regexp.MustCompile(`(?i);\s*(DROP|DELETE|TRUNCATE|ALTER|INSERT|UPDATE)\b`),
	regexp.MustCompile(`(?i)\bOR\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)\bOR\s+'[^']*'\s*=\s*'[^']*'`),
	regexp.MustCompile(`(?i)--\s*$`),
	regexp.MustCompile(`(?i)\bEXEC\s*\(`),
	regexp.MustCompile(`(?i)\bxp_cmdshell\b`),
	regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\s*\(`),
}

var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[;&|]\s*(cat|ls|pwd|whoami|id|uname|curl|wget|nc|ncat|bash|sh|zsh|python|perl|ruby|php)\b`),
	regexp.MustCompile("`[^`]+`"),
	regexp.MustCompile(`\$\([^)]+\)`),
	regexp.MustCompile(`\|\s*(bash|sh|zsh)`),
	regexp.MustCompile(`>\s*/etc/`),
	regexp.MustCompile(`>\s*/tmp/`),
}

// piiPatterns detects argument-shaped PII: SSN, major card brands, email,
// and phone numbers, mirroring the shapes matched by a dedicated PII
// detector but scoped to a single argument value.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b4[0-9]{12}(?:[0-9]{3})?\b`),
	regexp.MustCompile(`\b5[1-5][0-9]{14}\b`),
	regexp.MustCompile(`\b3[47][0-9]{13}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`\b\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
}

// Finding describes which family of pattern matched, for error reporting
// and audit detail fields.
type Finding struct {
	Family string // "sql_injection" | "command_injection" | "pii"
	Detail string
}

// ScanInjection checks s against the SQL- and command-injection pattern
// tables and returns the first match, if any.
func ScanInjection(s string) (Finding, bool) {
	for _, p := range sqlPatterns {
		if p.MatchString(s) {
			return Finding{Family: "sql_injection", Detail: "SQL injection pattern detected"}, true
		}
	}
	for _, p := range commandPatterns {
		if p.MatchString(s) {
			return Finding{Family: "command_injection", Detail: "command injection pattern detected"}, true
		}
	}
	return Finding{}, false
}

// ScanPII checks s against the PII pattern table and returns the first
// match, if any.
func ScanPII(s string) (Finding, bool) {
	for _, p := range piiPatterns {
		if p.MatchString(s) {
			return Finding{Family: "pii", Detail: "PII pattern detected"}, true
		}
	}
	return Finding{}, false
}
