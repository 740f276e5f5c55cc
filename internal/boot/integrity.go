package boot

import "fmt"

// ExitCode is the boot-time exit status contract: 0 normal, 2
// integrity failure, 3 configuration error, 4 permission refusal.
type ExitCode int

const (
	ExitOK                ExitCode = 0
	ExitIntegrityFailure  ExitCode = 2
	ExitConfigError       ExitCode = 3
	ExitPermissionRefused ExitCode = 4
)

// VerifyOrExit loads the manifest at manifestPath and verifies it
// against the current trust-root files, returning a non-OK ExitCode
// and a human-readable reason on failure. It never calls os.Exit
// itself — the caller (cmd/warden) owns process termination so tests
// can exercise this without killing the test binary.
func VerifyOrExit(manifestPath, passphrase string) (ExitCode, error) {
	m, err := Load(manifestPath)
	if err != nil {
		return ExitConfigError, err
	}
	if err := m.Verify(passphrase); err != nil {
		return ExitIntegrityFailure, err
	}
	return ExitOK, nil
}

// GenerateAndSave computes a fresh manifest over trustRoots and writes
// it to manifestPath.
func GenerateAndSave(trustRoots []string, passphrase, manifestPath string) error {
	m, err := Generate(trustRoots, passphrase)
	if err != nil {
		return err
	}
	if err := m.Save(manifestPath); err != nil {
		return fmt.Errorf("boot: saving manifest: %w", err)
	}
	return nil
}
