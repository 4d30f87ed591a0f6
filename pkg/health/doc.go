// Package health aggregates named readiness checks into HTTP probe handlers.
//
// Checks are plain func(ctx) error closures; pkg/redis and pkg/cache expose
// compatible ones. All checks in a round run in parallel under one deadline.
package health
