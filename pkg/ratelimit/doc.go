// Package ratelimit paces requests to the wiki API.
//
// The listing phase is the only serialized part of a run. Each page request
// after the first waits until the configured delay has passed since the
// previous one finished:
//
//	pacer := ratelimit.NewPacer(cfg.API.RequestDelay)
//	for {
//	    pacer.Wait()
//	    // fetch the next page
//	    pacer.Done()
//	}
package ratelimit
