// Package resilience groups fault isolation for outbound model calls.
//
// Only circuit breaking lives here. Every outbound request is a single attempt;
// a failing provider trips its breaker and later calls fail fast until the
// breaker half-opens again.
//
//	cb := circuitbreaker.New(circuitbreaker.GeminiAPIConfig())
//	summary, err := cb.ExecuteString(func() (string, error) {
//	    return callModel(ctx, prompt)
//	})
package resilience
