// ABOUTME: High-level notecast API
// ABOUTME: Wires sources, analysis and presentation into a pipeline and a feed server
// Package notecast assembles the pitch estimator, note mapper and onset
// stream into a Pipeline that consumes an input.Source, and a Server that
// publishes results to display clients over WebSocket.
//
// Example:
//
//	p, err := notecast.NewPipeline(notecast.DefaultPipelineConfig())
//	if err != nil {
//		return err
//	}
//	srv, err := notecast.NewServer(notecast.ServerConfig{Name: "Stage"})
//	if err != nil {
//		return err
//	}
//	go srv.Start()
//	defer srv.Stop()
//	err = p.Run(ctx, src, notecast.Fanout(srv, notecast.OnsetSink(printOnset)))
package notecast
