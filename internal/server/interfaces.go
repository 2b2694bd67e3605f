package server

// Server is the lifecycle contract of the portal's listener.
//
// RunServer blocks until a stop signal arrives and the listener has
// drained; Shutdown may be called directly to stop early.
type Server interface {
	RunServer()
	Shutdown()
}
