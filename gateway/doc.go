// Package gateway implements the server-side proxy that relays dereference
// requests to authorities which do not allow direct cross-origin reads.
//
// # Protocol
//
//	GET /uri-dereferencer/proxy?resource-url=<url>&adapter=<curl|default>&accept-header=<mime>
//
//   - A missing or blank resource-url answers 400 with
//     "The query must include the resource-url parameter."
//   - A resource-url rejected by the outbound policy answers 400.
//   - A transport failure answers 500 with
//     "Error during service request: <cause>".
//   - A non-2xx upstream response is relayed with its status code and the
//     body "Error during service request: <reason phrase>".
//   - A 2xx upstream response is relayed verbatim with its Content-Type.
//
// adapter=curl selects an HTTP/1.1-only client that identifies itself as
// curl; anything else uses the default client. accept-header, when present,
// becomes the Accept header of the upstream request.
//
// # Outbound policy
//
// Every upstream connection and redirect passes through a weburl.Policy, so
// the gateway cannot be used to reach loopback or private networks unless
// the policy explicitly allows it.
//
// # Router
//
// NewRouter mounts the gateway on a chi router together with /healthz and,
// optionally, a Prometheus metrics handler. Each request gets an ID that is
// echoed in the X-Request-Id response header and attached to log records.
package gateway
