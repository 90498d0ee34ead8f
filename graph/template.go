package graph

import (
	"fmt"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/tidwall/gjson"
)

// TemplateEngine renders the string/number templates embedded in node
// Data (e.g. a `fetch` node's url, an `llm` node's prompt) against a
// node's bound inputs. It never raises: a render failure is returned as
// a *EngineError of KindTemplateError for the caller to record, never
// panics or aborts the enclosing node.
type TemplateEngine struct {
	cache map[string]*exec.Template
}

// NewTemplateEngine constructs an engine with an empty compile cache.
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{cache: make(map[string]*exec.Template)}
}

// Render compiles (or reuses a cached compile of) src and executes it
// against vars. Any string value in vars that looks like a JSON object
// or array is transparently parsed first, so templates can index into
// `{{ payload.field }}` even when payload arrived as a JSON-encoded
// string — the auto-parse behavior external template interfaces are
// expected to provide.
func (t *TemplateEngine) Render(src string, vars map[string]any) (string, error) {
	tpl, ok := t.cache[src]
	if !ok {
		compiled, err := gonja.FromString(src)
		if err != nil {
			return "", NewEngineError(KindTemplateError, "", fmt.Sprintf("compile template: %v", err), err, nil)
		}
		tpl = compiled
		t.cache[src] = tpl
	}

	ctxData := make(map[string]any, len(vars))
	for k, v := range vars {
		ctxData[k] = autoParse(v)
	}

	out, err := tpl.ExecuteToString(exec.NewContext(ctxData))
	if err != nil {
		return "", NewEngineError(KindTemplateError, "", fmt.Sprintf("render template: %v", err), err, map[string]any{"template": src})
	}
	return out, nil
}

// autoParse turns a JSON-object/array-shaped string into its decoded
// form so templates can dot-index into it; any other value (including
// strings that are not JSON) passes through unchanged.
func autoParse(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := trimSpaceFast(s)
	if len(trimmed) == 0 {
		return v
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return v
	}
	if !gjson.Valid(trimmed) {
		return v
	}
	return gjson.Parse(trimmed).Value()
}

func trimSpaceFast(s string) string {
	start := 0
	for start < len(s) && isSpaceByte(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
