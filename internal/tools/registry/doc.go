// Package registry holds the tool catalog of the server and dispatches calls.
//
// A tool is a Descriptor with an ordered list of typed parameters plus a
// Handler. Dispatch looks the tool up, validates the raw arguments, runs the
// handler and wraps whatever happens into a Result envelope, so a failing
// tool never takes the server down.
//
// Mount exposes the registry on an mcp-go server:
//
//	reg := registry.New(registry.WithMiddleware(common.Instrumented(sc)))
//	calendar_tools.Register(reg, sc)
//	reg.Mount(mcpSrv)
package registry
