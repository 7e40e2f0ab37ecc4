package sim

// Settings configures a simulation run. Timing policy does not belong
// here — it flows through the synchrony model.
type Settings struct {
	// Seed initializes the simulator-owned random source.
	Seed int64
	// EnableTrace controls whether per-step configurations are retained
	// in the trace history. The events list is always recorded.
	EnableTrace bool
	// StepLimit bounds the number of events RunToCompletion processes;
	// 0 means no limit. The engine itself never terminates a run that
	// still has pending events — the limit is caller policy.
	StepLimit int
}
