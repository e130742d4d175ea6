package ir

// Version constants for the profile schema and engine.
const (
	// ProfileVersion is the profile IR schema version.
	ProfileVersion = "1"

	// EngineVersion is the dronectl engine version.
	EngineVersion = "0.1.0"
)
