// Package server manages the HTTP server lifecycle with graceful shutdown.
//
// [Server.Run] serves until its context is cancelled, then drains
// in-flight requests and runs registered shutdown funcs:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	srv := server.New(app, server.WithHost("127.0.0.1:8089"))
//	if err := srv.Run(ctx); err != nil {
//		return err
//	}
package server
