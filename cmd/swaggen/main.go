// Command swaggen builds Swagger 2.0 artifacts from fragmentary definition trees.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/swaggen"
	"github.com/erraggy/swaggen/cmd/swaggen/commands"
	"github.com/erraggy/swaggen/internal/cliutil"
)

var commandNames = []string{"build", "mcp", "version", "help"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch command := args[0]; command {
	case "version", "-v", "--version":
		cliutil.Writef(stdout, "swaggen v%s\n", swaggen.Version())
		cliutil.Writef(stdout, "commit: %s\n", swaggen.Commit())
		cliutil.Writef(stdout, "built: %s\n", swaggen.BuildTime())
		cliutil.Writef(stdout, "go: %s\n", swaggen.GoVersion())
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "build":
		err = commands.HandleBuild(ctx, args[1:], stdout, stderr)
	case "mcp":
		err = commands.HandleMCP(ctx, args[1:])
	default:
		cliutil.Writef(stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			cliutil.Writef(stderr, "Did you mean '%s'?\n", s)
		}
		cliutil.Writef(stderr, "\n")
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if !errors.Is(err, commands.ErrBuildFailed) {
			cliutil.Writef(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	usage := fmt.Sprintf(`swaggen - Swagger 2.0 artifact builder

Usage:
  swaggen <command> [flags]

Commands:
  build       Build artifacts from a definition tree
  mcp         Serve the build and discover tools over MCP (stdio)
  version     Show version information
  help        Show this help message

Run 'swaggen <command> --help' for command flags.
Every build flag default can be set with a SWAGGEN_* environment variable.

swaggen v%s
`, swaggen.Version())
	cliutil.Writef(w, "%s", usage)
}

// suggestCommand returns the closest command within edit distance 2, or "".
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
