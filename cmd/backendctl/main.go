// Command backendctl runs a single backend operation against a local
// sandbox. It exists for poking at the derived-operation engine from a
// shell: the exact scripts a remote sandbox would receive run here under
// sh -c.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"

	"github.com/agentkit/backends/internal/config"
	"github.com/agentkit/backends/internal/logging"
	"github.com/agentkit/backends/internal/sandbox/localexec"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	op := flag.String("op", "read", "Operation: list|read|search|glob|write|edit|exec")
	path := flag.String("path", "/", "Target path (or root for search/glob)")
	pattern := flag.String("pattern", "", "Search or glob pattern")
	include := flag.String("include", "", "Glob filter for search")
	content := flag.String("content", "", "Content for write")
	oldString := flag.String("old", "", "String to replace for edit")
	newString := flag.String("new", "", "Replacement string for edit")
	replaceAll := flag.Bool("replace-all", false, "Replace every occurrence for edit")
	offset := flag.Int("offset", 0, "First line (0-indexed) for read")
	limit := flag.Int("limit", 0, "Line count for read (0 = default)")
	command := flag.String("cmd", "", "Raw command for exec")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	runner := localexec.NewRunner(cfg.Sandbox.CommandTimeout, cfg.Sandbox.MaxOutputBytes, logger)
	runner.Dir = cfg.Sandbox.WorkDir
	box := localexec.New(runner, logger, nil)
	box.MaxWriteBytes = cfg.Sandbox.MaxWriteBytes

	ctx := context.Background()
	switch *op {
	case "list":
		printJSON(box.List(ctx, *path))
	case "read":
		fmt.Println(box.Read(ctx, *path, *offset, *limit))
	case "search":
		matches, err := box.Search(ctx, *pattern, *path, *include)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		printJSON(matches)
	case "glob":
		printJSON(box.Glob(ctx, *pattern, *path))
	case "write":
		printJSON(box.Write(ctx, *path, *content))
	case "edit":
		printJSON(box.Edit(ctx, *path, *oldString, *newString, *replaceAll))
	case "exec":
		resp, err := box.Execute(ctx, *command)
		if err != nil {
			log.Fatalf("Execute failed: %v", err)
		}
		printJSON(resp)
	default:
		fmt.Fprintf(os.Stderr, "unknown operation %q\n", *op)
		flag.Usage()
		os.Exit(2)
	}
}

func printJSON(v interface{}) {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
