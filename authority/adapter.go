package authority

import "errors"

// DefaultLanguage is used when a caller does not request a language.
const DefaultLanguage = "en"

// ErrMalformedBody is wrapped by adapters when a response body cannot be
// parsed in the authority's native format at all.
var ErrMalformedBody = errors.New("malformed response body")

// ErrNoMatch is returned by ResourceURL when the URI does not belong to the adapter.
var ErrNoMatch = errors.New("uri does not match authority")

// ProxyClient hints which outbound HTTP client the proxy gateway should use.
type ProxyClient string

const (
	// ProxyClientDefault uses the gateway's standard client.
	ProxyClientDefault ProxyClient = "default"
	// ProxyClientCurl uses a plain HTTP/1.1 client that behaves like curl,
	// for servers that are picky about standard client behaviour.
	ProxyClientCurl ProxyClient = "curl"
)

// Options describes the static transport requirements of an authority.
type Options struct {
	// UsesProxy routes the fetch through the proxy gateway. Authorities that
	// never send permissive cross-origin headers need this.
	UsesProxy bool `json:"uses_proxy" yaml:"uses_proxy"`

	// ProxyClient is forwarded to the gateway as the adapter hint.
	ProxyClient ProxyClient `json:"proxy_client,omitempty" yaml:"proxy_client,omitempty"`

	// AcceptHeader overrides the Accept header of the fetch.
	AcceptHeader string `json:"accept_header,omitempty" yaml:"accept_header,omitempty"`
}

// Adapter resolves URIs for a single external authority.
//
// Implementations must be stateless apart from static configuration and safe
// for concurrent use.
type Adapter interface {
	// Name returns the stable, unique authority name.
	Name() string

	// Matches reports whether the URI belongs to this authority. It must be a
	// pure function of the URI string.
	Matches(uri string) bool

	// ResourceURL derives the URL of the machine-readable representation of
	// uri. An empty lang means DefaultLanguage.
	ResourceURL(uri, lang string) (string, error)

	// Options returns the static transport requirements.
	Options() Options

	// ExtractFields parses body and returns the display fields. Missing
	// upstream data yields an empty or partial mapping and a nil error; a body
	// that cannot be parsed at all yields an error wrapping ErrMalformedBody.
	ExtractFields(uri string, body []byte, lang string) (*Fields, error)
}

// Language normalizes an optional language code.
func Language(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
