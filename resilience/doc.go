// Package resilience holds the concurrency primitives used in front of
// inference backends and on the public HTTP surface.
//
//   - Bulkhead: bounded slots per backend, shared by probes and real calls
//   - RateLimiter: token bucket used by the per-client HTTP middleware
//
// A backend gate rejects real calls when every slot is taken:
//
//	bh := resilience.NewBulkhead(resilience.DefaultBulkheadConfig("gpu-1"))
//
//	release, ok := bh.TryAcquire()
//	if !ok {
//	    return errors.Overloaded("gpu-1")
//	}
//	defer release()
//	return transport.Transcribe(ctx, req)
package resilience
