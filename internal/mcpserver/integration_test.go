package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/swaggen/internal/testutil"
)

// connect runs newServer over in-memory transports and returns a client
// session that is closed when the test ends.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := mcp.NewInMemoryTransports()
	served := make(chan error, 1)
	go func() { served <- newServer("test").Run(ctx, serverSide) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "swaggen-test", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientSide, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-served
	})
	return session
}

// callTool invokes a tool and decodes its structured output. It fails the
// test when the call itself errors; tool errors come back in the result.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if result.IsError || result.StructuredContent == nil {
		return result, nil
	}
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return result, out
}

func TestSession_ListTools(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.ElementsMatch(t, []string{"build", "discover"}, names)
}

func TestSession_DiscoverThenBuild(t *testing.T) {
	session := connect(t)
	src := testutil.WriteTree(t, testutil.PetstoreTree())
	out := filepath.Join(t.TempDir(), "out")

	_, found := callTool(t, session, "discover", map[string]any{"source": src})
	require.NotNil(t, found)
	assert.Equal(t, float64(2), found["spec_count"])
	assert.Equal(t, "info.yaml", found["root_info"])

	result, built := callTool(t, session, "build", map[string]any{
		"source":  src,
		"output":  out,
		"version": "2.3.0",
		"specs":   []string{"petstore"},
	})
	require.False(t, result.IsError)
	require.NotNil(t, built)
	assert.Equal(t, true, built["success"])
	assert.Equal(t, float64(1), built["written"])
	assert.FileExists(t, filepath.Join(out, "petstore.yaml"))
	assert.NoFileExists(t, filepath.Join(out, "store.yaml"))
}

func TestSession_ToolErrorHidesPaths(t *testing.T) {
	session := connect(t)

	result, _ := callTool(t, session, "discover", map[string]any{"source": "/tmp/swaggen-definitely-missing"})
	require.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "<path>")
	assert.NotContains(t, text.Text, "/tmp/")
}
