package tools

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/wardencore/warden/internal/injectionscan"
	"github.com/wardencore/warden/internal/protocol"
)

// Signature is a registered tool's argument contract: the JSON Schema
// its arguments must satisfy, and a per-argument scan policy letting a
// registered tool opt out of the PII/injection safety net where it
// knows an argument's shape makes a false positive likely (e.g. a
// `find` argument that legitimately contains SQL-looking text because
// the tool is a database-migration helper).
type Signature struct {
	Name           string
	ArgumentSchema map[string]any
	ScanPolicy     map[string]bool // arg key -> scan enabled; default true

	compiled *jsonschema.Schema
}

// Compile builds the JSON Schema validator from ArgumentSchema. Call
// once at registration time; Validate is then cheap on the hot path.
func (s *Signature) Compile() error {
	if s.ArgumentSchema == nil {
		return nil
	}
	raw, err := json.Marshal(s.ArgumentSchema)
	if err != nil {
		return fmt.Errorf("tools: marshal schema for %s: %w", s.Name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("tools: unmarshal schema for %s: %w", s.Name, err)
	}
	c := jsonschema.NewCompiler()
	resourceName := "warden:///" + s.Name
	if err := c.AddResource(resourceName, doc); err != nil {
		return fmt.Errorf("tools: add schema resource for %s: %w", s.Name, err)
	}
	schema, err := c.Compile(resourceName)
	if err != nil {
		return fmt.Errorf("tools: compile schema for %s: %w", s.Name, err)
	}
	s.compiled = schema
	return nil
}

func (s *Signature) scanEnabled(key string) bool {
	if s.ScanPolicy == nil {
		return true
	}
	enabled, set := s.ScanPolicy[key]
	if !set {
		return true
	}
	return enabled
}

// Validate checks a call's arguments against the signature's JSON
// Schema (if any was compiled) and, for each argument whose scan policy
// is still enabled, re-runs the PII/injection safety net — this is a
// second, signature-aware pass layered over the dispatcher's
// always-on scan, not a replacement for it.
func (s *Signature) Validate(call *protocol.Call) error {
	if s.compiled != nil {
		args := make(map[string]any)
		for _, a := range call.Args {
			if a.Key != "" {
				args[a.Key] = a.Value
			}
		}
		if err := s.compiled.Validate(args); err != nil {
			return fmt.Errorf("tools: argument schema validation failed for %s: %w", s.Name, err)
		}
	}

	for _, a := range call.Args {
		if a.Key == "" || !s.scanEnabled(a.Key) {
			continue
		}
		if finding, hit := injectionscan.ScanPII(a.Value); hit {
			return fmt.Errorf("tools: %s", finding.Detail)
		}
		if finding, hit := injectionscan.ScanInjection(a.Value); hit {
			return fmt.Errorf("tools: %s", finding.Detail)
		}
	}
	return nil
}
