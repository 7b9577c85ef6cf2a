// Package corpus streams a known-hash file through the signature parser
// into a match engine. Grounded on original_source/branches/index/match.cpp's
// sig_file_open / sig_file_next / sig_file_end loop and match.c's
// match_load, adapted to Go's bufio.Scanner and the engine's Add method.
package corpus

import (
	"bufio"
	"io"

	ssdcerrors "github.com/standardbeagle/ssdc/internal/errors"
	"github.com/standardbeagle/ssdc/internal/match"
	"github.com/standardbeagle/ssdc/internal/sigparse"
)

// LoadResult summarizes one corpus load: how many lines were accepted
// and which per-line parse errors were logged along the way.
type LoadResult struct {
	Accepted    int
	ParseErrors []*ssdcerrors.ParseError
}

// Load reads r as a known-hash file and inserts every successfully
// parsed line into engine via engine.Add. matchFile identifies this
// corpus for (raw, match_file) identity and provenance.
//
// The first line must be a known header (spec.md §4.5); anything else
// is a fatal *ssdcerrors.HeaderError and no lines are inserted. An
// underlying read failure is a fatal *ssdcerrors.IOError; the engine
// keeps whatever was inserted before the failure. Per-line parse
// errors are recoverable: they are collected into LoadResult and the
// load continues with the next line.
func Load(r io.Reader, matchFile string, engine *match.Engine, parser *sigparse.Parser) (LoadResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return LoadResult{}, ssdcerrors.NewIOError("reading header line", err)
		}
		return LoadResult{}, ssdcerrors.NewHeaderError("empty file")
	}
	header := scanner.Text()
	if !sigparse.IsKnownHeader(header) {
		return LoadResult{}, ssdcerrors.NewHeaderError("unrecognized header: " + header)
	}

	var result LoadResult
	lineNumber := 1
	for scanner.Scan() {
		lineNumber++
		line := sigparse.ChopLine(scanner.Text())

		sig, err := parser.ParseLine(line, matchFile, lineNumber)
		if err != nil {
			if pe, ok := err.(*ssdcerrors.ParseError); ok {
				result.ParseErrors = append(result.ParseErrors, pe)
				continue
			}
			return result, err
		}

		engine.Add(sig)
		result.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return result, ssdcerrors.NewIOError("reading corpus body", err)
	}

	return result, nil
}
