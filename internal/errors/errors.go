// Package errors defines the typed error kinds ssdc surfaces to callers.
// Error kinds are never translated into each other: a parse failure stays
// a *ParseError all the way up, so a caller can type-switch on it.
package errors

import "fmt"

// ParseErrorKind enumerates the ways a single known-hash line can fail to parse.
type ParseErrorKind string

const (
	MissingBlocksize  ParseErrorKind = "missing_blocksize"
	MissingSeparator  ParseErrorKind = "missing_separator"
	InvalidAlphabet   ParseErrorKind = "invalid_alphabet"
	UnterminatedQuote ParseErrorKind = "unterminated_quote"
	EmptySignature    ParseErrorKind = "empty_signature"
)

// ParseError is recoverable: the loader logs it and continues with the next line.
type ParseError struct {
	Line       int
	Kind       ParseErrorKind
	Underlying error
}

func NewParseError(line int, kind ParseErrorKind, underlying error) *ParseError {
	return &ParseError{Line: line, Kind: kind, Underlying: underlying}
}

func (e *ParseError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Kind, e.Underlying)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// HeaderError is fatal for a load attempt: the first line was not a known header.
type HeaderError struct {
	Detail string
}

func NewHeaderError(detail string) *HeaderError {
	return &HeaderError{Detail: detail}
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid file header: %s", e.Detail)
}

// IOError is fatal for a load attempt. The engine state up to the last
// successful insert remains intact and usable.
type IOError struct {
	Detail     string
	Underlying error
}

func NewIOError(detail string, underlying error) *IOError {
	return &IOError{Detail: detail, Underlying: underlying}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s: %v", e.Detail, e.Underlying)
}

func (e *IOError) Unwrap() error { return e.Underlying }

// ScorerRejectedError records a scorer call that returned -1 (malformed
// input). The pair is skipped; the engine continues.
type ScorerRejectedError struct {
	AID uint64
	BID uint64
}

func NewScorerRejectedError(aID, bID uint64) *ScorerRejectedError {
	return &ScorerRejectedError{AID: aID, BID: bID}
}

func (e *ScorerRejectedError) Error() string {
	return fmt.Sprintf("scorer rejected pair (id=%d, id=%d)", e.AID, e.BID)
}

// ConfigError reports an invalid configuration field. Ambient: the CLI and
// KDL config loader have no equivalent in the original tool's argv parsing.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

func NewConfigError(field, value string, underlying error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: underlying}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %q): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates multiple non-fatal errors, e.g. per-line parse
// errors accumulated over one corpus load.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors[0])
	}
}

func (e *MultiError) Unwrap() []error { return e.Errors }
