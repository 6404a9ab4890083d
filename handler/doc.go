// Package handler is the HTTP surface of the file service.
//
// Endpoints are typed HandlerFunc values wrapped into http.HandlerFunc with
// Wrap. Binders from pkg/binder fill the request struct, the handler calls a
// service and returns a Response. Errors from any stage reach the
// ErrorHandler, which maps service sentinels to status codes and writes
// {"error": "<message>"}.
//
// Authenticated endpoints read the session token from the X-Token header.
// Login uses an Authorization: Basic header instead.
//
//	api := handler.NewAPI(authService, fileManager)
//	router := handler.NewRouter(api, handler.WithLogger(log), handler.WithMetrics(m))
//	srv.Run(ctx, router)
package handler
