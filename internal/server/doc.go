// Package server wires expectrd together.
//
// It builds the session manager from configuration, sets up the gin router
// with recovery, metrics, and CORS middleware, and registers the REST,
// WebSocket, and Prometheus endpoints.
//
// Server Lifecycle:
//  1. Load configuration from environment
//  2. Initialize logger (production or development)
//  3. Create the session manager
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Kill remaining sessions on shutdown
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
