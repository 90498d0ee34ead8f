package tool

import (
	"context"
	"sync"
)

// MockTool is a test Tool: it records every call and replays a configured
// response sequence (repeating the last one once exhausted), or returns Err
// if set.
type MockTool struct {
	ToolName  string
	Responses []map[string]interface{}
	Err       error
	Calls     []MockToolCall

	mu        sync.Mutex
	callIndex int
}

// MockToolCall records one Call invocation's input.
type MockToolCall struct {
	Input map[string]interface{}
}

// Name implements Tool.
func (m *MockTool) Name() string {
	return m.ToolName
}

// Call implements Tool: records the call, then returns Err if configured,
// otherwise the next (or last) entry in Responses.
func (m *MockTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockToolCall{Input: input})

	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Responses) == 0 {
		return map[string]interface{}{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}

	return m.Responses[idx], nil
}

// Reset clears call history and the response cursor, for reuse across
// test cases.
func (m *MockTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns how many times Call has been invoked.
func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}
