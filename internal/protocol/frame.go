package protocol

import (
	"encoding/json"
	"fmt"
)

const maxResultPayload = 50_000

// Frame renders a Result in the wire format sent back to the model:
// [TOOL_RESULT name]\n<json>\n[/TOOL_RESULT]. Payloads exceeding
// maxResultPayload bytes are truncated with truncated=true set on the
// envelope, not inside Data, so truncation is always visible regardless
// of what the handler put in Data.
func Frame(r *Result) string {
	envelope := map[string]any{"ok": r.OK}
	if r.OK {
		for k, v := range r.Data {
			envelope[k] = v
		}
	} else {
		envelope["error_kind"] = string(r.ErrorKind)
		if r.Detail != "" {
			envelope["detail"] = r.Detail
		}
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"ok":false,"error_kind":"internal_error","detail":%q}`, err.Error()))
	}

	truncated := false
	if len(payload) > maxResultPayload {
		payload = payload[:maxResultPayload]
		truncated = true
	}

	body := string(payload)
	if truncated {
		partial, _ := json.Marshal(body)
		body = fmt.Sprintf(`{"ok":%t,"truncated":true,"partial":%s}`, r.OK, partial)
	}

	return fmt.Sprintf("[TOOL_RESULT %s]\n%s\n[/TOOL_RESULT]", r.Name, body)
}
