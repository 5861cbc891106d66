package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/swaggen/internal/cliutil"
	"github.com/erraggy/swaggen/internal/mcpserver"
)

// SetupMCPFlags creates the FlagSet for the mcp command. It has no flags;
// the server is configured through the environment.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: swaggen mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve the build and discover tools over MCP on stdio.\n")
		cliutil.Writef(fs.Output(), "Defaults come from SWAGGEN_* environment variables.\n")
	}
	return fs
}

// HandleMCP runs the MCP server until the client disconnects or ctx is done.
func HandleMCP(ctx context.Context, args []string) error {
	fs := SetupMCPFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}
	return mcpserver.Run(ctx)
}
