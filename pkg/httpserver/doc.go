// Package httpserver runs an http.Server until its context is canceled and
// exposes liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// Readiness probes are plain func(context.Context) error values such as
// mongo.Healthcheck and redis.Healthcheck.
package httpserver
