// Package talk2mcp drives a text-only language model through a sequence of
// tool calls served over the Model Context Protocol.
//
// The model never sees native function-calling APIs. Each turn it receives a
// full prompt (tools, reply formats, operation status and history) and answers
// with one line in a small reply grammar:
//
//	FUNCTION_CALL: {"function":"add","parameters":{"a":45,"b":44}}
//	FINAL_ANSWER: [89]
//	ERROR: <description>
//	SUGGESTION: <text>
//	COMPLETE: <summary>
//
// This package holds the vocabulary shared by the rest of the module: tool
// definitions and results, the single-prompt [ChatProvider] interface,
// categorized errors, retry configuration and the JSON schema builder used by
// locally served tools.
//
// # Packages
//
//   - [github.com/spetersoncode/talk2mcp/reply]: reply grammar parser
//   - [github.com/spetersoncode/talk2mcp/tool]: catalog, argument coercion, dispatch
//   - [github.com/spetersoncode/talk2mcp/mcp]: MCP sessions and server
//   - [github.com/spetersoncode/talk2mcp/client]: model calls with timeout and retry
//   - [github.com/spetersoncode/talk2mcp/agent]: the orchestration loop
//   - [github.com/spetersoncode/talk2mcp/plan]: YAML task plans
//   - [github.com/spetersoncode/talk2mcp/store]: run report persistence (memory, Redis)
//   - [github.com/spetersoncode/talk2mcp/metrics]: Prometheus collectors for runs
//
// # Basic Usage
//
//	session, err := mcp.NewStdioSession(ctx, "go", nil, "run", "./cmd/mcpserver")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	tools, _ := session.ListTools(ctx)
//	catalog, _ := tool.NewCatalog(tools)
//	dispatcher := tool.NewDispatcher(catalog, session)
//
//	gen, _ := client.New(ctx, client.Config{
//	    Provider: ai.ProviderGoogle,
//	    APIKey:   os.Getenv("GOOGLE_API_KEY"),
//	})
//
//	result, err := agent.New(gen, catalog, dispatcher).Run(ctx, plan.Default())
//	fmt.Println(result.Termination, result.Answer)
package talk2mcp
