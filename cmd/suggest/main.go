// Command suggest prints grocery suggestions for the items given as arguments.
//
//	suggest milk eggs bread
//
// It always exits 0; when nothing can be suggested it prints [] and the reason on stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pageza/grocerly/backend/config"
	"github.com/pageza/grocerly/backend/internal/ollama"
	"github.com/pageza/grocerly/backend/internal/suggestion"
)

func main() {
	model := flag.String("model", "", "override OLLAMA_MODEL")
	verbose := flag.Bool("v", false, "log diagnostics to stderr")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		cfg = config.Default()
	}
	if *model != "" {
		cfg.OllamaModel = *model
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	run(context.Background(), cfg, flag.Args(), logger, os.Stdout, os.Stderr)
}

func run(ctx context.Context, cfg *config.Config, items []string, logger *log.Logger, stdout, stderr io.Writer) {
	result := suggestion.Result{Suggestions: []suggestion.Suggestion{}}

	client, err := ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaTimeout, nil)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
	} else {
		result = suggestion.NewService(client, cfg.OllamaModel, logger).GenerateSuggestions(ctx, items)
		if !result.Diagnostic.OK() {
			fmt.Fprintln(stderr, result.Diagnostic.Message)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Suggestions); err != nil {
		fmt.Fprintf(stderr, "failed to write suggestions: %v\n", err)
	}
}
