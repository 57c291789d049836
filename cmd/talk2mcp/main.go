// Command talk2mcp drives a language model through a task plan, calling
// tools on an MCP server until the plan's operations are done.
//
// Usage:
//
//	talk2mcp run "Find the sum of 45 and 44, then draw it"
//	talk2mcp tools
//	talk2mcp serve --port 8080
//
// Configuration comes from the environment (and a .env file); flags
// override it. See config.go for the variables.
package main

func main() {
	Execute()
}
