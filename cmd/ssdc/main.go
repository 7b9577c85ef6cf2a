// Command ssdc loads ssdeep-style known-hash corpora, compares query
// signatures against them through the 7-gram index and match engine,
// and reports matches or clusters. Grounded on the teacher's
// cmd/lci/main.go urfave/cli.App structure, cut down to the three
// subcommands this engine needs.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/ssdc/internal/cluster"
	"github.com/standardbeagle/ssdc/internal/config"
	"github.com/standardbeagle/ssdc/internal/corpus"
	"github.com/standardbeagle/ssdc/internal/debug"
	"github.com/standardbeagle/ssdc/internal/match"
	"github.com/standardbeagle/ssdc/internal/scorer"
	"github.com/standardbeagle/ssdc/internal/sigparse"
	"github.com/standardbeagle/ssdc/internal/signature"
	"github.com/standardbeagle/ssdc/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "ssdc",
		Usage:                  "fuzzy-hash corpus matcher and cluster builder",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threshold", Aliases: []string{"t"}, Usage: "minimum score to accept a match (0-100)"},
			&cli.BoolFlag{Name: "display-all", Aliases: []string{"a"}, Usage: "show every scored candidate regardless of threshold"},
			&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "suppress self-matches by (raw, match_file) identity"},
			&cli.BoolFlag{Name: "csv", Usage: `"a","b",score output instead of "a matches b (score)"`},
		},
		Commands: []*cli.Command{
			matchCommand(),
			clusterCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ssdc:", err)
		os.Exit(1)
	}
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "compare a query file's signatures against known corpora",
		ArgsUsage: "<query-file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "known", Aliases: []string{"m"}, Usage: "known-hash corpus file or glob, may repeat"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("match requires exactly one <query-file> argument", 1)
			}
			queryPath := c.Args().First()

			knownFiles, err := expandGlobs(c.StringSlice("known"))
			if err != nil {
				return err
			}
			if len(knownFiles) == 0 {
				return cli.Exit("match requires at least one --known corpus", 1)
			}

			cfg := cliConfig(c)

			var alloc signature.IDAllocator
			parser := sigparse.New(&alloc)
			var clusterMgr *cluster.Manager
			if cfg.Cluster {
				clusterMgr = cluster.NewManager()
			}
			engine := match.New(engineConfig(cfg), scorer.NewEdlibScorer(), clusterMgr)

			for _, kf := range knownFiles {
				if err := loadCorpusFile(kf, engine, parser); err != nil {
					return err
				}
			}

			qf, err := os.Open(queryPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("opening query file: %v", err), 1)
			}
			defer qf.Close()

			printer := matchPrinter(cfg)

			scanner := bufio.NewScanner(qf)
			lineNumber := 0
			for scanner.Scan() {
				lineNumber++
				line := sigparse.ChopLine(scanner.Text())
				if lineNumber == 1 && sigparse.IsKnownHeader(line) {
					continue
				}
				query, err := parser.ParseLine(line, "", lineNumber)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ssdc: %v\n", err)
					continue
				}
				engine.CompareAgainstKnown(query, printer)
			}
			if err := scanner.Err(); err != nil {
				return cli.Exit(fmt.Sprintf("reading query file: %v", err), 1)
			}

			return nil
		},
	}
}

func clusterCommand() *cli.Command {
	return &cli.Command{
		Name:      "cluster",
		Usage:     "group every signature across the given files into transitive clusters",
		ArgsUsage: "<file>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("cluster requires at least one file argument", 1)
			}
			files, err := expandGlobs(c.Args().Slice())
			if err != nil {
				return err
			}

			var alloc signature.IDAllocator
			parser := sigparse.New(&alloc)

			sigs, err := readAllSignatures(files, parser)
			if err != nil {
				return err
			}

			clusterMgr := cluster.NewManager()
			engine := match.New(match.Config{
				Threshold:  c.Int("threshold"),
				DisplayAll: c.Bool("display-all"),
				Pretty:     true,
				Cluster:    true,
			}, scorer.NewEdlibScorer(), clusterMgr)

			// add_and_compare over the combined ingestion order: each
			// signature is compared against everything inserted so far,
			// then inserted itself, so every unordered pair across every
			// loaded file is evaluated exactly once (spec.md §4.3).
			for _, sig := range sigs {
				engine.AddAndCompare(sig, nil)
			}

			printClusters(clusterMgr, engine)
			return nil
		},
	}
}

// readAllSignatures parses every line of every file (validating each
// file's own header) into a single ordered list, preserving per-file
// match_file provenance. Per-line parse errors are logged and skipped;
// a bad header or I/O failure aborts the whole command.
func readAllSignatures(files []string, parser *sigparse.Parser) ([]*signature.Signature, error) {
	var sigs []*signature.Signature
	for _, f := range files {
		fh, err := os.Open(f)
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("opening %s: %v", f, err), 1)
		}

		scanner := bufio.NewScanner(fh)
		lineNumber := 0
		var headerChecked bool
		for scanner.Scan() {
			lineNumber++
			line := sigparse.ChopLine(scanner.Text())
			if lineNumber == 1 {
				if !sigparse.IsKnownHeader(line) {
					fh.Close()
					return nil, cli.Exit(fmt.Sprintf("%s: unrecognized header", f), 1)
				}
				headerChecked = true
				continue
			}
			sig, err := parser.ParseLine(line, f, lineNumber)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ssdc: %s: %v\n", f, err)
				continue
			}
			sigs = append(sigs, sig)
		}
		scanErr := scanner.Err()
		fh.Close()
		if !headerChecked {
			return nil, cli.Exit(fmt.Sprintf("%s: empty file", f), 1)
		}
		if scanErr != nil {
			return nil, cli.Exit(fmt.Sprintf("reading %s: %v", f, scanErr), 1)
		}
	}
	return sigs, nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(c *cli.Context) error {
			fmt.Println(version.FullInfo())
			return nil
		},
	}
}

// cliConfig assembles a config.Config from global CLI flags.
func cliConfig(c *cli.Context) config.Config {
	return config.Config{
		Threshold:  c.Int("threshold"),
		DisplayAll: c.Bool("display-all"),
		Pretty:     c.Bool("pretty"),
		CSV:        c.Bool("csv"),
	}
}

func engineConfig(cfg config.Config) match.Config {
	return match.Config{
		Threshold:  cfg.Threshold,
		DisplayAll: cfg.DisplayAll,
		Pretty:     cfg.Pretty,
		Cluster:    cfg.Cluster,
	}
}

func loadCorpusFile(path string, engine *match.Engine, parser *sigparse.Parser) error {
	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening %s: %v", path, err), 1)
	}
	defer f.Close()

	result, err := corpus.Load(f, path, engine, parser)
	if err != nil {
		return cli.Exit(fmt.Sprintf("loading %s: %v", path, err), 1)
	}
	for _, pe := range result.ParseErrors {
		fmt.Fprintf(os.Stderr, "ssdc: %s: %v\n", path, pe)
	}
	debug.LogLoad("loaded %d signatures from %s", result.Accepted, path)
	return nil
}

// expandGlobs expands each pattern against the filesystem via
// doublestar, matching the teacher's pattern-based file selection
// (internal/indexing/watcher.go's use of doublestar.Match), here
// applied to --known/cluster file arguments so a caller can pass
// "corpora/*.ssdeep" instead of enumerating files by hand.
func expandGlobs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("invalid glob %q: %v", p, err), 1)
		}
		if len(matches) == 0 {
			// Not a glob, or a glob matching nothing: treat as a literal
			// path and let the subsequent os.Open report if it's missing.
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

// matchPrinter returns a match.Handler that formats accepted matches to
// stdout per cfg.CSV, supplementing spec.md §6's "csv is a handler
// formatting hint" with the concrete format original_source's
// handle_match uses.
func matchPrinter(cfg config.Config) match.Handler {
	return func(m match.Match) {
		a := displayName(m.Query)
		b := displayName(m.Candidate)
		if cfg.CSV {
			fmt.Printf("%q,%q,%d\n", a, b, m.Score)
			return
		}
		fmt.Printf("%s matches %s (%d)\n", a, b, m.Score)
	}
}

// displayName formats a signature's identity for output: if it carries
// match_file provenance, "matchfile:filename"; otherwise the bare
// filename, matching original_source's has_match_file()-gated prefix.
func displayName(sig *signature.Signature) string {
	name := sig.Filename
	if name == "" {
		name = sig.Raw
	}
	if sig.HasMatchFile() {
		return sig.MatchFile + ":" + name
	}
	return name
}

// printClusters mirrors original_source/branches/index/match.cpp's
// display_clusters: one "** Cluster size N" header per cluster,
// followed by each member's display name.
func printClusters(mgr *cluster.Manager, engine *match.Engine) {
	clusters := mgr.AllClusters()
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID() < clusters[j].ID() })

	for _, c := range clusters {
		members := c.Members()
		fmt.Printf("** Cluster size %d\n", len(members))
		names := make([]string, 0, len(members))
		for id := range members {
			if sig, ok := engine.Index().Lookup(id); ok {
				names = append(names, displayName(sig))
			}
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
	}
}
