package sandbox

import (
	"strings"

	"github.com/wardencore/warden/internal/injectionscan"
	"github.com/wardencore/warden/internal/normalize"
	"github.com/wardencore/warden/internal/pathguard"
)

// ErrorKind is one of the canonical sandbox-pipeline error_kind values.
type ErrorKind string

const (
	ErrNonASCIICommand   ErrorKind = "non_ascii_command"
	ErrBlockedMetachar   ErrorKind = "blocked_metacharacter"
	ErrCommandNotAllowed ErrorKind = "command_not_allowed"
	ErrInlineInterpreter ErrorKind = "inline_interpreter"
	ErrOutsideSandbox    ErrorKind = "outside_sandbox"
	ErrProtected         ErrorKind = "protected"
	ErrBlockedExtension  ErrorKind = "blocked_extension"
)

// PipelineError reports which phase rejected the command.
type PipelineError struct {
	Kind   ErrorKind
	Detail string
}

func (e *PipelineError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

// Sandbox runs the four-phase command validation pipeline over a policy
// and a path guard built from the same AllowedDirs / BlockedWriteExtensions.
type Sandbox struct {
	policy Policy
	paths  *pathguard.Guard
}

// New builds a Sandbox. protectedPaths are the additional write-denied
// trust roots layered on top of the policy's own confinement rules.
func New(policy Policy, protectedPaths []string) (*Sandbox, error) {
	guard, err := pathguard.New(policy.AllowedDirs, policy.BlockedWriteExtensions, protectedPaths)
	if err != nil {
		return nil, err
	}
	return &Sandbox{policy: policy, paths: guard}, nil
}

// Accepted is the result of a successful pipeline run: the tokenized
// argv ready for direct process spawn.
type Accepted struct {
	Argv []string
}

// Validate runs phases 0 through 3 over raw and either returns the
// accepted argv or a *PipelineError naming the phase that rejected it.
// cwd is the directory relative paths in arguments are resolved against;
// it must itself be inside the sandbox's allowed_dirs.
func (s *Sandbox) Validate(raw, cwd string) (*Accepted, error) {
	// Phase 0 — normalization.
	normalized, err := normalize.Command(raw)
	if err != nil {
		return nil, &PipelineError{Kind: ErrNonASCIICommand, Detail: err.Error()}
	}

	// Phase 1 — metacharacter rejection. Substring check, not token-aware:
	// quoting an operator does not defuse it, because the executor never
	// hands the string to a shell in the first place.
	for _, meta := range s.policy.BlockedMetacharacters {
		if strings.Contains(normalized, meta) {
			return nil, &PipelineError{Kind: ErrBlockedMetachar, Detail: "contains " + meta}
		}
	}

	// Phase 2 — tokenize & allowlist.
	tokens, err := tokenize(normalized)
	if err != nil {
		return nil, &PipelineError{Kind: ErrBlockedMetachar, Detail: err.Error()}
	}
	if len(tokens) == 0 {
		return nil, &PipelineError{Kind: ErrCommandNotAllowed, Detail: "empty command"}
	}
	cmd := tokens[0]

	if contains(s.policy.Blocklist, cmd) {
		return nil, &PipelineError{Kind: ErrCommandNotAllowed, Detail: cmd}
	}
	if !contains(s.policy.Allowlist, cmd) {
		return nil, &PipelineError{Kind: ErrCommandNotAllowed, Detail: cmd}
	}
	if contains(s.policy.Interpreters, cmd) {
		for _, tok := range tokens[1:] {
			if contains(s.policy.InlineFlags, tok) {
				return nil, &PipelineError{Kind: ErrInlineInterpreter, Detail: tok}
			}
		}
	}
	if cmd == "git" {
		if len(tokens) < 2 {
			return nil, &PipelineError{Kind: ErrCommandNotAllowed, Detail: "git requires a subcommand"}
		}
		sub := tokens[1]
		if contains(s.policy.GitBlockedSubcommands, sub) || !contains(s.policy.GitAllowedSubcommands, sub) {
			return nil, &PipelineError{Kind: ErrCommandNotAllowed, Detail: "git " + sub}
		}
	}

	// Phase 3 — argument path confinement + injection safety net.
	if err := s.checkArgs(cmd, tokens, cwd); err != nil {
		return nil, err
	}

	return &Accepted{Argv: tokens}, nil
}

func (s *Sandbox) checkArgs(cmd string, tokens []string, cwd string) error {
	// Injection safety net runs over every argument (including option
	// arguments) regardless of whether cmd is a path-arg command — it
	// catches substitution hiding inside a quoted argument that phase 1's
	// substring check never opened.
	for _, tok := range tokens[1:] {
		if _, hit := injectionscan.ScanInjection(tok); hit {
			return &PipelineError{Kind: ErrBlockedMetachar, Detail: "injection pattern in argument: " + tok}
		}
	}

	if !contains(s.policy.PathArgCommands, cmd) {
		return nil
	}

	isDestCmd := cmd == "cp" || cmd == "mv"

	pathArgs := tokens[1:]
	for i, tok := range pathArgs {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		mode := pathguard.ModeRead
		if cmd == "rm" || cmd == "mkdir" || cmd == "touch" {
			mode = pathguard.ModeWrite
		}
		if isDestCmd && i == len(pathArgs)-1 {
			mode = pathguard.ModeWrite
		}

		resolved, err := s.paths.Validate(tok, cwd, mode)
		if err != nil {
			if ve, ok := err.(*pathguard.ValidationError); ok {
				return &PipelineError{Kind: ErrorKind(ve.Kind), Detail: tok}
			}
			return &PipelineError{Kind: ErrOutsideSandbox, Detail: tok}
		}
		_ = resolved
	}
	return nil
}
