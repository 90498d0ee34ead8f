// Package nodes provides the built-in Runtime implementations the
// compiler dispatches to by NodeSpec.Type: text, parser, fetch,
// client, llm, chat, and send_message. Each type registers itself
// against graph.RegisterNodeType from an init() function, so importing
// this package for its side effects (a blank import from the CLI/
// embedding shell) is enough to make every built-in type available to
// graph.Build.
package nodes
