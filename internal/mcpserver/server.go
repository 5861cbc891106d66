// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes swaggen builds as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/swaggen"
)

const serverInstructions = `swaggen MCP server: discovers fragmentary definition trees and builds Swagger 2.0 artifacts from them.

Configuration: All defaults are configurable via SWAGGEN_* environment variables set in your MCP client config.

Key settings:
- SWAGGEN_VERSION: version embedded in every artifact when the build tool omits it
- SWAGGEN_FORMAT (default: json,yaml): artifact formats
- SWAGGEN_POLICY (default: partial): partial or all-or-nothing
- SWAGGEN_REF_MODE (default: link): link or inline
- SWAGGEN_WORKERS (default: 0, meaning GOMAXPROCS)
- SWAGGEN_TIMEOUT (default: 0s, no limit)
- SWAGGEN_MCP_DIAGNOSTIC_LIMIT (default: 100): default page size for diagnostics
- SWAGGEN_MCP_MAX_LIMIT (default: 1000): largest page size a tool returns

Use discover first to see which specifications a tree holds, then build with specs to narrow the run.`

// Run serves the discover and build tools over stdio until the client
// disconnects or ctx is cancelled.
func Run(ctx context.Context) error {
	return newServer(swaggen.Version()).Run(ctx, &mcp.StdioTransport{})
}

func newServer(version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "swaggen", Version: version},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "discover",
		Description: "List the specifications of a definition tree without building them. Returns each specification with its documents and their kinds, the root info document, and duplicate-identifier conflicts. Use offset/limit to page through specifications.",
	}, handleDiscover)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build",
		Description: "Build Swagger 2.0 artifacts from a definition tree into an output directory. Returns the status of every specification (written, failed, withheld, skipped) and paginated diagnostics with stage, document and line. A version is required unless SWAGGEN_VERSION is set. Use specs or profiles to build part of a tree and aggregate to also write one merged artifact.",
	}, handleBuild)
	return server
}

// paginate returns items[offset:offset+limit]. A non-positive limit means
// cfg.DiagnosticLimit and no page exceeds cfg.MaxLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.DiagnosticLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil for n == 0 so empty lists are omitted from output.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// pathPattern matches absolute paths under the usual filesystem roots.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

// sanitizeError replaces absolute paths in err's message with "<path>".
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error())
}

func sanitize(s string) string {
	return pathPattern.ReplaceAllString(s, "<path>")
}

// errResult reports err to the client as a tool error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
