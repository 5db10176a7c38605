// Package fetcher retrieves sitemap documents over HTTP(S).
//
// A Fetcher turns a URI into the bytes of the document behind it. The default
// HTTPFetcher issues plain GET requests and handles two things itself:
//
//   - Redirects: 3xx responses are followed up to MaxAttempts times. Relative
//     Location headers are resolved against the URI that produced them.
//   - Compression: a 2xx body whose URI path ends in ".gz" and that arrived
//     without a Content-Encoding header is gunzipped before it is returned.
//
// Any other status fails with a *FetchError. Exhausting the redirect budget
// fails with a *MaxRedirectError. Network errors from the underlying client
// are returned as they are.
//
// # Usage
//
//	f := fetcher.NewHTTPFetcher(fetcher.WithUserAgent("my-bot/1.0"))
//	body, err := f.Fetch(ctx, "www.example.com/sitemap.xml.gz")
//
// Callers that need authentication, caching or another transport implement
// Fetcher themselves, or wrap a function with FetchFunc.
package fetcher
