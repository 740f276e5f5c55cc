// Package sandbox implements the command sandbox: the four-phase
// validation pipeline that stands between a model-issued bash_exec call
// and a spawned process.
package sandbox

import "time"

// Policy is the immutable, boot-time-fixed configuration the pipeline and
// executor consult. It never changes after construction. New uses the
// fields exactly as given; a field left unset is not filled in from
// DefaultPolicy.
type Policy struct {
	// AllowedDirs confines both the process working directory and every
	// path-shaped argument (via pathguard).
	AllowedDirs []string

	// Allowlist and Blocklist are the command names (tokens[0]) the
	// pipeline accepts or unconditionally rejects. Blocklist takes
	// precedence over Allowlist.
	Allowlist []string
	Blocklist []string

	// Interpreters are command names treated as inline-interpreter risks
	// when followed by one of InlineFlags.
	Interpreters []string
	InlineFlags  []string

	// BlockedMetacharacters are substrings that fail phase 1 unconditionally.
	BlockedMetacharacters []string

	// PathArgCommands names commands whose non-flag arguments are treated
	// as paths and routed through the path validator.
	PathArgCommands []string

	// BlockedWriteExtensions applies to the destination argument of
	// cp/mv and to any tool-level write/edit target.
	BlockedWriteExtensions []string

	// GitAllowedSubcommands / GitBlockedSubcommands restrict `git <sub>`.
	GitAllowedSubcommands []string
	GitBlockedSubcommands []string

	// WallTimeout bounds a spawned process and is enforced via context.
	// CPUTimeout is carried in the policy but Run does not apply it: no
	// CPU-time limit is set on the spawned process.
	CPUTimeout  time.Duration
	WallTimeout time.Duration

	// MaxOutputBytes bounds combined stdout+stderr; output beyond this is
	// truncated and the result is marked truncated=true.
	MaxOutputBytes int

	// Env is the sanitized allowlisted environment passed to every spawn,
	// already resolved to absolute values (PATH entries resolved at boot
	// per the boot-integrity component).
	Env []string
}

// DefaultPolicy returns the baseline sandbox policy described in the
// command-sandbox contract. Callers override AllowedDirs and Env per
// deployment; the rest are sensible, conservative defaults.
func DefaultPolicy(allowedDirs []string, env []string) Policy {
	return Policy{
		AllowedDirs: allowedDirs,
		Allowlist: []string{
			"ls", "cat", "grep", "find", "head", "tail", "wc", "sort", "uniq",
			"diff", "echo", "pwd", "git", "python", "python3", "node", "go",
			"cp", "mv", "mkdir", "touch", "rm",
		},
		Blocklist: []string{
			"sudo", "su", "chmod", "chown", "curl", "wget", "nc", "ssh",
			"scp", "dd", "mount", "umount", "kill", "killall", "reboot",
			"shutdown", "systemctl", "crontab", "eval", "exec",
		},
		Interpreters: []string{"python", "python3", "node", "ruby", "perl", "php"},
		InlineFlags:  []string{"-c", "-e", "--eval", "--exec", "-"},
		BlockedMetacharacters: []string{
			"&&", "||", ";", "|", "`", "$(", "$((", ">", "<", ">>", "<<",
			"\n", "&",
		},
		PathArgCommands: []string{
			"ls", "cat", "grep", "find", "head", "tail", "wc", "diff",
			"cp", "mv", "mkdir", "touch", "rm",
		},
		BlockedWriteExtensions: []string{
			".sh", ".exe", ".bat", ".cmd", ".ps1", ".dll", ".so", ".dylib",
		},
		GitAllowedSubcommands: []string{"status", "diff", "log", "add", "commit", "branch"},
		GitBlockedSubcommands: []string{"push", "pull", "fetch", "clone", "remote"},
		CPUTimeout:            10 * time.Second,
		WallTimeout:           15 * time.Second,
		MaxOutputBytes:        64 * 1024,
		Env:                   env,
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
