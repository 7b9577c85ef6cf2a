// Package sigparse converts one text line of the ssdeep known-hash format
// into a signature.Signature, validating headers and the base64 alphabet
// of each component. Grounded on the algorithm in
// original_source/branches/index/match.cpp's sig_file_next /
// add_to_index path and original_source/match.c's find_comma_separated_string.
package sigparse

import (
	"strconv"
	"strings"

	ssdcerrors "github.com/standardbeagle/ssdc/internal/errors"
	"github.com/standardbeagle/ssdc/internal/signature"
)

// Known header strings. Bytes after the header on line 1 are ignored;
// comparison is against the known header's length only.
const (
	HeaderV10 = "ssdeep,1.0--blocksize:hash:hash,filename"
	HeaderV11 = "ssdeep,1.1--blocksize:hash:hash,filename"
)

// ChopLine strips a single trailing \r\n, \r, or \n from s.
func ChopLine(s string) string {
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}

// IsKnownHeader reports whether line (after chopping CR/LF) starts with
// one of the known header strings.
func IsKnownHeader(line string) bool {
	line = ChopLine(line)
	return strings.HasPrefix(line, HeaderV10) || strings.HasPrefix(line, HeaderV11)
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func isBase64Byte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/':
		return true
	}
	return false
}

func validAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isBase64Byte(s[i]) {
			return false
		}
	}
	return true
}

// Parser converts known-hash lines into Signatures. It owns nothing but
// the id allocator: callers are responsible for deduplication and
// insertion into an index.
type Parser struct {
	ids *signature.IDAllocator
}

// New creates a Parser that draws ids from the given allocator. Multiple
// parsers (e.g. one per corpus file loaded concurrently) should share one
// allocator so ids stay unique and gaps stay meaningful.
func New(ids *signature.IDAllocator) *Parser {
	return &Parser{ids: ids}
}

// ParseLine parses one known-hash line ("BLOCKSIZE:S1:S2[,FILENAME]"),
// already chopped of its line terminator. matchFile identifies the
// corpus this line came from (may be empty). lineNumber is used only for
// error reporting.
//
// An id is consumed from the allocator unconditionally, before any
// parsing is attempted, so a rejected line still advances the id
// sequence and leaves an observable gap (see design note in
// internal/signature and DESIGN.md "short-signature / id-gap" entries).
func (p *Parser) ParseLine(line string, matchFile string, lineNumber int) (*signature.Signature, error) {
	id := p.ids.Next()

	if line == "" {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.EmptySignature, nil)
	}

	firstColon := strings.IndexByte(line, ':')
	if firstColon <= 0 {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.MissingBlocksize, nil)
	}
	blocksizeStr := line[:firstColon]
	for i := 0; i < len(blocksizeStr); i++ {
		if blocksizeStr[i] < '0' || blocksizeStr[i] > '9' {
			return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.MissingBlocksize, nil)
		}
	}
	blocksize64, err := strconv.ParseUint(blocksizeStr, 10, 32)
	if err != nil {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.MissingBlocksize, err)
	}

	rest := line[firstColon+1:]
	secondColon := strings.IndexByte(rest, ':')
	if secondColon < 0 {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.MissingSeparator, nil)
	}
	s1 := rest[:secondColon]
	if !validAlphabet(s1) {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.InvalidAlphabet, nil)
	}

	afterS2 := rest[secondColon+1:]
	comma := strings.IndexByte(afterS2, ',')
	var s2, filenameField string
	hasFilename := comma >= 0
	if hasFilename {
		s2 = afterS2[:comma]
		filenameField = afterS2[comma+1:]
	} else {
		s2 = afterS2
	}
	if !validAlphabet(s2) {
		return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.InvalidAlphabet, nil)
	}

	var filename string
	if hasFilename {
		filename, err = unquoteFilename(filenameField)
		if err != nil {
			return nil, ssdcerrors.NewParseError(lineNumber, ssdcerrors.UnterminatedQuote, err)
		}
	}

	return &signature.Signature{
		ID:        id,
		Blocksize: uint32(blocksize64),
		S1:        s1,
		S2:        s2,
		Raw:       line[:firstColon+1+secondColon+1+len(s2)],
		Filename:  filename,
		MatchFile: matchFile,
	}, nil
}

// unquoteFilename strips one leading/trailing '"' pair (if both present)
// and unescapes \" to ". A filename that opens with a quote but never
// closes it is an UnterminatedQuote error.
func unquoteFilename(raw string) (string, error) {
	if raw == "" || raw[0] != '"' {
		return raw, nil
	}

	var sb strings.Builder
	i := 1
	closed := false
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) && raw[i+1] == '"' {
			sb.WriteByte('"')
			i += 2
			continue
		}
		if c == '"' {
			closed = true
			i++
			break
		}
		sb.WriteByte(c)
		i++
	}
	if !closed {
		return "", errUnterminatedQuote
	}
	if i < len(raw) {
		sb.WriteString(raw[i:])
	}
	return sb.String(), nil
}

type parseErrString string

func (e parseErrString) Error() string { return string(e) }

const errUnterminatedQuote = parseErrString("missing closing quote")
