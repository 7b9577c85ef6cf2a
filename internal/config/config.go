// Package config holds the engine's tunable configuration and loads it
// from a ".ssdc.kdl" file, grounded on the teacher's internal/config
// package (config.go + kdl_config.go), generalized from the teacher's
// indexing/search settings to the match engine's knobs in spec.md §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	ssdcerrors "github.com/standardbeagle/ssdc/internal/errors"
)

// Config mirrors match.Config plus the options an engine run needs
// beyond the core algorithm: which corpora to load and how to report.
type Config struct {
	Threshold  int
	DisplayAll bool
	Pretty     bool
	Cluster    bool
	CSV        bool

	Known []string
}

// Default returns the engine's default configuration: threshold 0,
// every boolean option off.
func Default() Config {
	return Config{
		Threshold: 0,
	}
}

// LoadKDL reads "<projectRoot>/.ssdc.kdl" if present and overlays its
// values onto Default(). A missing file is not an error: it returns
// Default() unchanged.
func LoadKDL(projectRoot string) (Config, error) {
	cfg := Default()

	kdlPath := filepath.Join(projectRoot, ".ssdc.kdl")
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return cfg, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read .ssdc.kdl: %w", err)
	}

	return parseKDL(string(content), cfg)
}

func parseKDL(content string, cfg Config) (Config, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return cfg, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "threshold":
			if v, ok := firstIntArg(n); ok {
				cfg.Threshold = v
			}
		case "display_all":
			if b, ok := firstBoolArg(n); ok {
				cfg.DisplayAll = b
			}
		case "pretty":
			if b, ok := firstBoolArg(n); ok {
				cfg.Pretty = b
			}
		case "cluster":
			if b, ok := firstBoolArg(n); ok {
				cfg.Cluster = b
			}
		case "csv":
			if b, ok := firstBoolArg(n); ok {
				cfg.CSV = b
			}
		case "known":
			cfg.Known = append(cfg.Known, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// Validate checks Config fields, mirroring the teacher's
// validator pattern: out-of-range values are reported, not silently
// clamped, so a misconfigured .ssdc.kdl is caught at startup.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return ssdcerrors.NewConfigError("threshold", strconv.Itoa(c.Threshold), fmt.Errorf("must be between 0 and 100"))
	}
	return nil
}
