// Command mcpserver is the reference MCP server for talk2mcp. It serves the
// math and canvas tools over stdio.
//
// Usage:
//
//	go run ./cmd/mcpserver
//
// talk2mcp starts it by default when no --server-cmd or --server-url is
// given.
package main

import (
	"log"

	"github.com/spetersoncode/talk2mcp/internal/toolkit"
	"github.com/spetersoncode/talk2mcp/mcp"
)

func main() {
	registry := toolkit.New(nil)

	if err := mcp.ServeStdio(registry,
		mcp.WithName("talk2mcp-tools"),
		mcp.WithVersion("1.0.0"),
		mcp.WithInstructions("Math tools and an in-memory canvas. Call open_canvas before drawing."),
	); err != nil {
		log.Fatal(err)
	}
}
