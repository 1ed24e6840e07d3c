// Package tui is a minimal interactive client loop: it reads a query per
// line from an input reader, sends it to the daemon, and renders the
// ranked results. It is intentionally thin - not a full terminal UI
// framework port - so cmd/vicaya's interactive subcommand has something to
// exercise the daemon client against without pulling in a TUI dependency
// the rest of the corpus never reaches for.
package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/daemon"
)

// Options configures an interactive session.
type Options struct {
	Limit int
	Scope string
}

// Run reads queries from in, one per line, until in is exhausted or a
// query of "exit" or "quit" is entered. Results are written to out.
func Run(client *daemon.Client, in io.Reader, out io.Writer, opts Options) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "vicaya interactive search - type a query, or exit to quit")

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			continue
		}
		if term == "exit" || term == "quit" {
			return nil
		}

		results, err := client.Search(term, opts.Limit, opts.Scope)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		render(out, results)
	}
}

func render(out io.Writer, results []vicaya.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "  (no matches)")
		return
	}
	for _, r := range results {
		fmt.Fprintf(out, "  %6.3f  %s\n", r.Score, r.Path)
	}
}
