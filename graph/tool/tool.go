package tool

import "context"

// Tool is something an LLM-driven node can invoke by name: a web search, a
// database query, an HTTP call, a calculation. Implementations should
// validate their input, respect ctx cancellation, and return errors rather
// than panicking.
type Tool interface {
	// Name is the tool's identifier, matching the name an LLM call site
	// binds it under (lowercase, underscore-separated — "get_weather",
	// "search_web").
	Name() string

	// Call executes the tool against input (its shape matches the
	// corresponding ToolSpec's schema) and returns structured output.
	Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}
