// Package service composes genops into one object.
//
// A Service owns one scheduler, one tiered cache and one generator. Every
// live generation call goes through the scheduler, so calls to the
// generation service are spaced and retried no matter which operation
// issued them, and through the cache, so repeated and concurrent requests
// for the same logical input cost at most one call.
//
//	svc, err := service.New(ctx, cfg)
//	if err != nil { ... }
//	defer svc.Close(ctx)
//
//	res, err := svc.Generate(ctx, "resume_rewrite", resume, prompt)
package service
