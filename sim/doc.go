// Package sim provides a deterministic discrete-event simulator for open
// queueing networks.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - server.go: the station contract (arrival, update, TTNC) and the policy factory
//   - system.go: the time-skipping event loop, routing, and area integration
//   - replicate.go: parallel replications with derived seeds and t-based CIs
//
// # Architecture
//
// The engine inverts control at each event: every station reports the time
// until its next completion (TTNC), the system advances the global clock by
// the minimum of those and the time to the next external arrival, then
// routes completed jobs per the transition matrix (or deterministic tandem).
//
// Service policies are closed variants behind the Server interface:
//   - fcfs.go: FCFS, single channel and multi-channel
//   - ps.go: processor sharing over k channels
//   - fb.go: foreground-background (least attained service)
//   - srpt.go: shortest remaining processing time
//
// Random variates come from sim/dist; every draw within a run consumes the
// single seeded stream owned by the engine, which is what makes runs
// bit-reproducible. Replications derive per-index seeds with SplitMix64
// (rng.go) so results are independent of the worker thread count.
package sim
