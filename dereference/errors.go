package dereference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semderef/authority"
)

// Kind classifies a dereference failure.
type Kind int

// Failure kinds, in the order the dereference steps can produce them.
const (
	KindUnknown Kind = iota
	KindNoMatch
	KindNoProxyConfigured
	KindResourceUnavailable
	KindParseFailure
)

// Sentinel errors matched by errors.Is against any *Error of the same kind.
var (
	ErrNoMatch             = errors.New("no authority matches uri")
	ErrNoProxyConfigured   = errors.New("authority requires a proxy but none is configured")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrParseFailure        = errors.New("resource could not be parsed")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNoMatch:
		return "NoMatch"
	case KindNoProxyConfigured:
		return "NoProxyConfigured"
	case KindResourceUnavailable:
		return "ResourceUnavailable"
	case KindParseFailure:
		return "ParseFailure"
	default:
		return "Unknown"
	}
}

// label is the metric and log form of the kind.
func (k Kind) label() string {
	switch k {
	case KindNoMatch:
		return "no_match"
	case KindNoProxyConfigured:
		return "no_proxy_configured"
	case KindResourceUnavailable:
		return "resource_unavailable"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNoMatch:
		return ErrNoMatch
	case KindNoProxyConfigured:
		return ErrNoProxyConfigured
	case KindResourceUnavailable:
		return ErrResourceUnavailable
	case KindParseFailure:
		return ErrParseFailure
	default:
		return nil
	}
}

// Error describes a failed dereference.
type Error struct {
	Kind Kind
	URI  string

	// Authority is the name of the matched adapter, empty for KindNoMatch.
	Authority string

	// ResourceURL is the URL that was (or would have been) fetched.
	ResourceURL string

	// StatusCode is the HTTP status of a non-2xx response.
	StatusCode int

	// Fields holds whatever was extracted before a KindParseFailure.
	Fields *authority.Fields

	Err error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString("dereference failed")
	}
	if e.Authority != "" {
		fmt.Fprintf(&b, " (%s)", e.Authority)
	}
	fmt.Fprintf(&b, ": %s", e.URI)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindUnknown
}

// IsNoMatch reports whether no registered authority recognises the URI.
func IsNoMatch(err error) bool { return errors.Is(err, ErrNoMatch) }

// IsNoProxyConfigured reports whether the authority needs the proxy gateway
// and none is configured.
func IsNoProxyConfigured(err error) bool { return errors.Is(err, ErrNoProxyConfigured) }

// IsResourceUnavailable reports whether the representation could not be
// fetched.
func IsResourceUnavailable(err error) bool { return errors.Is(err, ErrResourceUnavailable) }

// IsParseFailure reports whether the fetched representation could not be
// parsed.
func IsParseFailure(err error) bool { return errors.Is(err, ErrParseFailure) }
