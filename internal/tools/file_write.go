package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wardencore/warden/internal/pathguard"
	"github.com/wardencore/warden/internal/protocol"
)

// FileWrite implements file_write(path, content): validates path in
// write mode, creates parent directories within the sandbox, writes
// atomically (temp file + rename), and records a reversible backup so
// an operator /undo can restore the previous contents.
type FileWrite struct {
	Paths   *pathguard.Guard
	Backups *BackupStore
}

func (h *FileWrite) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	path, ok := call.Get("path")
	if !ok {
		return nil, fmt.Errorf("file_write: missing path argument")
	}
	content, ok := call.Get("content")
	if !ok {
		return nil, fmt.Errorf("file_write: missing content argument")
	}

	resolved, err := h.Paths.Validate(path, hctx.Cwd, pathguard.ModeWrite)
	if err != nil {
		return nil, err
	}

	if h.Backups != nil {
		if prior, err := os.ReadFile(resolved); err == nil {
			h.Backups.Record(resolved, prior)
		}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("file_write: %w", err)
	}

	tmp := resolved + ".warden-tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("file_write: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return nil, fmt.Errorf("file_write: %w", err)
	}

	return map[string]any{"path": resolved, "bytes_written": len(content)}, nil
}

// BackupStore retains the previous contents of written files so an
// operator /undo can restore them. It is deliberately simple — one
// in-memory generation per path, not a full history.
type BackupStore struct {
	entries map[string][]byte
}

func NewBackupStore() *BackupStore {
	return &BackupStore{entries: make(map[string][]byte)}
}

func (b *BackupStore) Record(path string, content []byte) {
	b.entries[path] = content
}

func (b *BackupStore) Restore(path string) ([]byte, bool) {
	content, ok := b.entries[path]
	return content, ok
}
