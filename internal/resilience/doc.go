// Package resilience holds fault-tolerance helpers.
//
// The circuitbreaker subpackage guards the search providers and the news
// store. Ingestion never retries: a failed category simply yields nothing
// until the next scheduled run.
//
//	cb := circuitbreaker.New(circuitbreaker.SearchAPIConfig("duckduckgo", "Music"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return client.Search(ctx, q)
//	})
package resilience
