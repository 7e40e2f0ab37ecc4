// Package sim is a deterministic discrete-event simulator for distributed
// algorithms.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - pid.go, topology.go: the immutable identifiers and the static
//     communication graph
//   - algorithm.go, event.go: the contract user algorithms implement and
//     the events they exchange
//   - simulator.go: the event loop and its (delivery time, sequence)
//     total order
//
// # Architecture
//
// An algorithm is defined once — per-process state, message and signal
// types, and a pure transition function — and executed over a chosen
// topology and synchrony model. The simulator is strictly single-threaded:
// the concurrency of the modeled system is captured by event timestamps
// and ordering alone. Every run appends its full causal history to a
// Trace; derived views (Lamport clocks, happened-before) and persistence
// live in the trace sub-package.
//
// Reproducibility is a hard guarantee: the simulator owns an explicitly
// seeded random source, synchrony models draw from it in queue-pop order,
// and two runs with identical seed, system, algorithm, and schedule calls
// produce structurally identical traces.
package sim
