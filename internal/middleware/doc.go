// Package middleware provides HTTP middleware for expectrd.
//
// Middleware stack includes:
//   - RequestLogger: structured per-request logging with zap
//   - Recovery and CORS come from gin and gin-contrib/cors
//
// Example Usage:
//
//	router.Use(middleware.RequestLogger(logger))
package middleware
