// Command vicaya is the CLI client: it speaks the daemon protocol over a
// Unix domain socket to offer search/status/rebuild/shutdown/interactive
// subcommands. The App/Command layout follows standardbeagle/lci's
// cmd/lci/main.go use of github.com/urfave/cli/v2.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vicaya/vicaya/daemon"
	"github.com/vicaya/vicaya/tui"
)

func main() {
	app := &cli.App{
		Name:  "vicaya",
		Usage: "query the vicaya filesystem search daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"s"},
				Usage:   "path to the vicayad control socket",
				EnvVars: []string{"VICAYA_SOCKET"},
				Value:   defaultSocketPath(),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
				Value: 5 * time.Second,
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			statusCommand(),
			rebuildCommand(),
			shutdownCommand(),
			interactiveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "vicaya:", err)
		os.Exit(1)
	}
}

func clientFrom(c *cli.Context) *daemon.Client {
	return daemon.NewClient(c.String("socket"), c.Duration("timeout"))
}

func defaultSocketPath() string {
	home, _ := os.UserHomeDir()
	return home + "/.vicaya/vicayad.sock"
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"f"},
		Usage:     "search the index for a term",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
			&cli.StringFlag{Name: "scope", Usage: "restrict results to this path prefix"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("search requires a term")
			}
			results, err := clientFrom(c).Search(c.Args().First(), c.Int("limit"), c.String("scope"))
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%6.3f  %s\n", r.Score, r.Path)
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show index statistics",
		Action: func(c *cli.Context) error {
			stats, err := clientFrom(c).Status()
			if err != nil {
				return err
			}
			fmt.Printf("indexed files:   %d\n", stats.IndexedFiles)
			fmt.Printf("trigram count:   %d\n", stats.TrigramCount)
			fmt.Printf("arena size:      %d bytes\n", stats.ArenaSize)
			fmt.Printf("allocated bytes: %d\n", stats.AllocatedBytes)
			return nil
		},
	}
}

func rebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "trigger a full index rebuild",
		Action: func(c *cli.Context) error {
			if err := clientFrom(c).Rebuild(); err != nil {
				return err
			}
			fmt.Println("rebuild complete")
			return nil
		},
	}
}

func shutdownCommand() *cli.Command {
	return &cli.Command{
		Name:  "shutdown",
		Usage: "flush and stop the daemon",
		Action: func(c *cli.Context) error {
			return clientFrom(c).Shutdown()
		},
	}
}

func interactiveCommand() *cli.Command {
	return &cli.Command{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "run an interactive search loop",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
			&cli.StringFlag{Name: "scope"},
		},
		Action: func(c *cli.Context) error {
			return tui.Run(clientFrom(c), os.Stdin, os.Stdout, tui.Options{
				Limit: c.Int("limit"),
				Scope: c.String("scope"),
			})
		},
	}
}
