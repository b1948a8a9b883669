// Package main provides an interactive terminal chat over the answer
// pipeline. It shares the server's wire-up, so a query answered here behaves
// exactly like one answered over HTTP.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kona-labs/study-advisor-go/internal/app"
	"github.com/kona-labs/study-advisor-go/internal/config"
	"github.com/kona-labs/study-advisor-go/internal/intent"
	"github.com/kona-labs/study-advisor-go/internal/logger"
	"github.com/kona-labs/study-advisor-go/internal/rag"
)

// noMatchReply is shown for empty and failed queries alike; the user gets
// the same polite miss either way.
const noMatchReply = "Sorry, I couldn't find any matching programs. Try rephrasing your query or being more specific."

func main() {
	k := flag.Int("k", 0, "number of programs to retrieve per query (0 = configured default)")
	dataDir := flag.String("data", "", "override DATA_DIR")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// Chat output goes to stdout; keep logs on stderr and quiet by default.
	log := logger.NewWithWriter("warn", os.Stderr)

	application, err := app.New(context.Background(), cfg, log, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to assemble answer pipeline")
	}
	defer func() { _ = application.Close() }()

	fmt.Printf("Study advisor ready: %d programs loaded.\n", application.Store.Len())
	if !cfg.HasGenerativeBackend() {
		fmt.Println("No generation provider configured; answers show retrieved programs only.")
	}
	fmt.Println(`Type a question, or "quit" to exit.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" {
			break
		}

		result := application.Orchestrator.Answer(context.Background(), query, *k)
		renderResult(os.Stdout, result)
	}

	if err := scanner.Err(); err != nil {
		log.WithError(err).Error("Input error")
		os.Exit(1)
	}

	fmt.Printf("\n%d queries answered this session.\n", application.Orchestrator.HistorySize())
}

// renderResult prints one answered query: the response text followed by a
// detail block per matched record. Error results and empty matches both get
// the apologetic reply.
func renderResult(w io.Writer, result rag.QueryResult) {
	if result.Intent == intent.IntentError || result.Count == 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", noMatchReply)
		return
	}

	_, _ = fmt.Fprintf(w, "\n[%s]\n%s\n", result.Intent, result.Response)
	_, _ = fmt.Fprintf(w, "\n%d detailed results:\n\n%s\n",
		result.Count, rag.FormatPrograms(result.Programs, result.Distances))
}
