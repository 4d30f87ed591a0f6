// Package quota bounds the rate of expensive or abusable operations: guest
// quiz plays by IP, AI generations by user id, and the system-wide AI budget.
//
// A [Tracker] enforces a fixed-window counter per identity and, optionally, a
// global counter shared by every identity. State lives entirely in process
// memory; this is deliberately not a distributed limiter, so each process
// enforces its own ceilings.
//
//	plays := quota.NewTracker(cfg)
//	defer plays.Close()
//
//	if res := plays.Check(clientIP); !res.Allowed {
//	    // res.Scope says which ceiling was hit, res.ResetIn when it clears
//	}
//
// [Tracker.Status] answers "how much is left" without consuming quota, for
// display purposes. A background janitor sweeps identities whose window has
// lapsed so one-shot guest IPs do not accumulate forever.
package quota
