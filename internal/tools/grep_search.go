package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/wardencore/warden/internal/anchor"
	"github.com/wardencore/warden/internal/pathguard"
	"github.com/wardencore/warden/internal/protocol"
)

const grepMaxMatches = 200

// GrepSearch implements grep_search(pattern, path?): validates path
// (defaulting to cwd) in read mode, walks files beneath it, and passes
// matched lines through the trigger scanner and anchorer — matching
// file content can inject just as easily as a direct file_read.
//
// Per the provenance resolution, grep_search sets the taint flag at
// call granularity, not per matched line: if any file it touches is
// outside the trusted set, the whole call is untrusted.
type GrepSearch struct {
	Paths *pathguard.Guard
	Trust *TrustRegistry
}

func (h *GrepSearch) Invoke(ctx context.Context, hctx *protocol.HandlerContext, call *protocol.Call) (map[string]any, error) {
	patternStr, ok := call.Get("pattern")
	if !ok {
		patternStr, ok = call.Positional(0)
	}
	if !ok {
		return nil, fmt.Errorf("grep_search: missing pattern argument")
	}
	re, err := regexp.Compile(patternStr)
	if err != nil {
		return nil, fmt.Errorf("grep_search: invalid pattern: %w", err)
	}

	searchPath := hctx.Cwd
	if v, ok := call.Get("path"); ok {
		searchPath = v
	}
	root, err := h.Paths.Validate(searchPath, hctx.Cwd, pathguard.ModeRead)
	if err != nil {
		return nil, err
	}

	var matches []string
	anyUntrusted := false
	count := 0

	walkErr := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || count >= grepMaxMatches {
			return nil
		}
		if _, err := h.Paths.Validate(p, root, pathguard.ModeRead); err != nil {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()

		if !h.Trust.IsTrusted(p) {
			anyUntrusted = true
		}

		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() && count < grepMaxMatches {
			lineNo++
			if re.MatchString(scanner.Text()) {
				rel, _ := filepath.Rel(root, p)
				matches = append(matches, fmt.Sprintf("%s:%d:%s", rel, lineNo, scanner.Text()))
				count++
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("grep_search: %w", walkErr)
	}

	body := ""
	for i, m := range matches {
		if i > 0 {
			body += "\n"
		}
		body += m
	}
	wrapped, anchorMatches := anchor.ScanAndWrap("grep:"+root, body)

	return map[string]any{
		"matches":           wrapped,
		"match_count":       len(matches),
		"neutralized_count": len(anchorMatches),
		"untrusted_origin":  anyUntrusted,
	}, nil
}
