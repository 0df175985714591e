package speedrun

// StepDefinition describes one unit of progress.
type StepDefinition struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Checkpoint  bool   `yaml:"checkpoint,omitempty" json:"checkpoint,omitempty"`
}

// SegmentDefinition groups an ordered sequence of steps.
type SegmentDefinition struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []*StepDefinition `yaml:"steps" json:"steps"`
}

// RunDefinition is the immutable template a Run is instantiated from.
type RunDefinition struct {
	ID       string               `yaml:"id" json:"id"`
	Name     string               `yaml:"name" json:"name"`
	Settings Settings             `yaml:"settings" json:"settings"`
	Segments []*SegmentDefinition `yaml:"segments" json:"segments"`
}

// DisplayName returns Name, falling back to ID.
func (d *StepDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// DisplayName returns Name, falling back to ID.
func (d *SegmentDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// DisplayName returns Name, falling back to ID.
func (d *RunDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Checkpoints returns the number of steps flagged as checkpoints.
func (d *SegmentDefinition) Checkpoints() int {
	n := 0
	for _, s := range d.Steps {
		if s != nil && s.Checkpoint {
			n++
		}
	}
	return n
}

// sameStep reports whether a and b identify the same step definition.
func sameStep(a, b *StepDefinition) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || (a.ID != "" && a.ID == b.ID)
}

func sameSegment(a, b *SegmentDefinition) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || (a.ID != "" && a.ID == b.ID)
}
