package boot

import (
	"fmt"
	"os/exec"
)

// ResolvedBinaries maps a spawned-process name (python, git, the model
// backend, ...) to the absolute path captured at boot time. Resolving
// once at boot and threading the result through the sandbox's Env
// means a later PATH mutation cannot redirect a spawn to an attacker
// binary.
type ResolvedBinaries map[string]string

// ResolveBinaries looks up each name via exec.LookPath once, at boot,
// and returns the name-to-absolute-path table. It fails closed: a
// name that cannot be resolved is a configuration error, not a
// silently-skipped entry, since the sandbox's allowlist assumes every
// entry it names is resolvable.
func ResolveBinaries(names []string) (ResolvedBinaries, error) {
	resolved := make(ResolvedBinaries, len(names))
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("boot: resolving %q: %w", name, err)
		}
		resolved[name] = path
	}
	return resolved, nil
}
