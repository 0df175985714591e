package speedrun

// Settings are the policy flags a RunDefinition carries for edge-case
// transitions. The zero value is the default policy.
type Settings struct {
	// EndSegmentOnFinish ends a segment as soon as it is finished, even if
	// some of its steps are incomplete.
	EndSegmentOnFinish bool `yaml:"end_segment_on_finish" json:"end_segment_on_finish"`

	// EndSpeedrunOnFinish ends the run as soon as every segment is finished,
	// even if the run is incomplete.
	EndSpeedrunOnFinish bool `yaml:"end_speedrun_on_finish" json:"end_speedrun_on_finish"`

	// ManualFinish stops completion of the last outstanding checkpoint step
	// from implicitly finishing its segment; only Finish or full completion
	// does.
	ManualFinish bool `yaml:"manual_finish" json:"manual_finish"`
}

// DefaultSettings returns the settings used when a definition omits them:
// checkpoints finish their segment, nothing ends early.
func DefaultSettings() Settings {
	return Settings{}
}
