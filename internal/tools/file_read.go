package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/wardencore/warden/internal/anchor"
	"github.com/wardencore/warden/internal/pathguard"
	"github.com/wardencore/warden/internal/protocol"
)

const defaultMaxReadLines = 500

// FileRead implements file_read(path, offset?, limit?): validates path
// in read mode, reads at most limit (default defaultMaxReadLines) lines
// starting at offset, returns them with line numbers, and passes the
// content through the trigger scanner and anchorer before it reaches
// the model.
type FileRead struct {
	Paths *pathguard.Guard
	Trust *TrustRegistry
}

func (h *FileRead) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	path, ok := call.Get("path")
	if !ok {
		path, ok = call.Positional(0)
	}
	if !ok {
		return nil, fmt.Errorf("file_read: missing path argument")
	}

	resolved, err := h.Paths.Validate(path, hctx.Cwd, pathguard.ModeRead)
	if err != nil {
		return nil, err
	}

	offset := 0
	if v, ok := call.Get("offset"); ok {
		offset, _ = strconv.Atoi(v)
	}
	limit := defaultMaxReadLines
	if v, ok := call.Get("limit"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < defaultMaxReadLines {
			limit = n
		}
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("file_read: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= offset {
			continue
		}
		if len(lines) >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("%d\t%s", lineNo, scanner.Text()))
	}

	body := ""
	for i, l := range lines {
		if i > 0 {
			body += "\n"
		}
		body += l
	}

	untrusted := !h.Trust.IsTrusted(resolved)
	wrapped, matches := anchor.ScanAndWrap("file:"+resolved, body)

	return map[string]any{
		"content":           wrapped,
		"path":              resolved,
		"lines_returned":    len(lines),
		"neutralized_count": len(matches),
		"untrusted_origin":  untrusted,
	}, nil
}
