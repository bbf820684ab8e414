// Package resilience provides the fault tolerance building blocks used by
// the scraping pipeline: circuit breakers around external providers and
// retry with exponential backoff for transient failures.
//
// The subpackages cover:
//   - circuitbreaker: gobreaker wrappers with per-dependency configs
//     (search providers, content fetch, LLM APIs, database)
//   - retry: backoff retry with jitter plus the error classifier that
//     decides which failures are worth retrying
//
// Usage:
//
//	cb := circuitbreaker.New(circuitbreaker.SearchProviderConfig("newsapi"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
//
//	err := retry.WithBackoff(ctx, retry.SearchFetchConfig(), func() error {
//	    return performRequest()
//	})
package resilience
