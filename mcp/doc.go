// Package mcp connects the orchestration loop to tool-execution sessions
// over the Model Context Protocol.
//
// A [Session] is the client side. It lists a server's tools and calls them,
// and it satisfies ai.ToolSession so a tool.Dispatcher can drive it:
//
//	session, err := mcp.NewStdioSession(ctx, "./mcpserver", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	tools, err := session.ListTools(ctx)
//	catalog, err := tool.NewCatalog(tools)
//	dispatcher := tool.NewDispatcher(catalog, session)
//
// [NewServer] and [ServeStdio] are the server side. They expose a
// tool.Registry to any MCP client:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("add", "Add two numbers", addHandler),
//	)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp
