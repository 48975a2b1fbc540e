// Package search provides web search backends for autoresearch.
//
// Available providers:
//
//   - Tavily: requires an API key, supports basic/advanced depth
//   - Brave: requires an API key, paced to one request per second per key
//
// Both implement autoresearch.Searcher. They do not retry; wrap them with
// autoresearch.NewSearchClient for retry with backoff. HTTP 429 responses
// are returned as errors tagged with autoresearch.ErrTagRateLimit.
//
//	backend, err := search.New(search.ProviderTavily, apiKey)
//	searcher := autoresearch.NewSearchClient(backend)
package search
