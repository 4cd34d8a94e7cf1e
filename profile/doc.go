// Package profile wraps [github.com/pkg/profile] so that profiling code is
// only compiled into binaries built with the pprof tag:
//
//	go build -tags pprof -o cose .
//
// Without the tag, [Modes] is empty and [Config.Start] does nothing.
//
// A session is configured with [New] and started with [Config.Start]:
//
//	defer profile.New(
//		profile.WithMode("allocs"),
//		profile.WithPath(dir),
//	).Start().Stop()
//
// The profile is written to Path as <mode>.pprof when Stop is called.
//
// # Modes
//
//   - allocs, heap, mem: memory profiles. Building a document makes one arena
//     allocation per node, so allocs shows where large sources spend memory.
//   - cpu, clock: CPU and wall-clock time.
//   - block, mutex: contention, such as concurrent loads of the parse cache.
//   - goroutine, thread: goroutine and OS thread creation.
//   - trace: execution trace, viewed with "go tool trace".
//
// # Command Line
//
//	cose --pprof-mode allocs a.cose b.cose
//	cose --pprof-mode cpu --pprof-dir ./profiles select 'Kind == "Text"' big.cose
//
// Profiles are written to $XDG_CACHE_HOME/cose/pprof unless --pprof-dir is
// given, and are read with the pprof tool:
//
//	go tool pprof -http=: ./cose ~/.cache/cose/pprof/cpu.pprof
package profile
