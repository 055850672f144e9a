// Package dereference resolves linked-data URIs into display fields.
//
// A Dereferencer owns an authority.Registry. For each URI it finds the first
// adapter that recognises it, builds the adapter's resource URL, optionally
// routes the request through the proxy gateway, fetches the representation
// and hands it to the adapter for extraction:
//
//	reg := authority.NewRegistry()
//	providers.Register(reg)
//
//	d, err := dereference.New(reg, dereference.WithProxyURL("https://example.org/uri-dereferencer/proxy"))
//	if err != nil {
//	    return err
//	}
//	res, err := d.Dereference(ctx, "https://www.wikidata.org/wiki/Q42")
//
// Failures are *Error values whose Kind tells the caller what happened:
// no adapter matched, the adapter needs a proxy that is not configured, the
// representation could not be fetched, or it could not be parsed. Use the
// IsNoMatch family of helpers or errors.Is with the Err sentinels to test for
// them.
//
// Adapters that declare Options.UsesProxy are never fetched directly. Their
// requests are rewritten to
//
//	{proxy}?resource-url={url}&adapter={client}&accept-header={mime}
//
// and fail with KindNoProxyConfigured, without any network access, when no
// proxy URL is set.
package dereference
