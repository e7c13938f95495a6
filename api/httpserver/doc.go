// Package httpserver provides the HTTP server shell shared by the poll API binaries.
//
// BaseServer wires a chi router with request IDs, real-IP detection, panic
// recovery and structured request logging, then lets each RouteRegistrar
// mount its endpoints. Every server also answers:
//
//   - /livez: always 200 while the process is up
//   - /readyz: 200 when ready, 503 after /drain
//   - /drain, /undrain: toggle readiness for load balancer rotation
//
// CORS is applied when HTTPServerConfig.AllowedOrigins is set, and pprof is
// mounted under /debug when EnablePprof is true.
//
// # Usage
//
//	svc := services.NewPollService(deps)
//	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
//	    ListenAddr: ":8080",
//	    Log:        logger,
//	}, svc)
//	if err != nil {
//	    return err
//	}
//	srv.RunInBackground()
//	defer srv.Shutdown()
package httpserver
