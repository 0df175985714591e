package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"speedrun-tracker/internal/speedrun"
)

// ErrDefinitionNotFound is returned when a definition ID is not in the catalog.
var ErrDefinitionNotFound = errors.New("definition not found")

// Catalog is the set of run definitions runs can be started from.
type Catalog struct {
	defs  map[DefinitionID]*speedrun.RunDefinition
	order []DefinitionID
}

// NewCatalog indexes defs by ID. IDs must be non-empty and unique.
func NewCatalog(defs ...*speedrun.RunDefinition) (*Catalog, error) {
	c := &Catalog{defs: make(map[DefinitionID]*speedrun.RunDefinition, len(defs))}
	for _, def := range defs {
		if err := c.add(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCatalog parses every .yaml and .yml file in dir.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read definitions dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	c := &Catalog{defs: make(map[DefinitionID]*speedrun.RunDefinition, len(names))}
	for _, name := range names {
		def, err := ReadDefinition(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if err := c.add(def); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return c, nil
}

// Get returns the definition with the given ID.
func (c *Catalog) Get(id DefinitionID) (*speedrun.RunDefinition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// List returns summaries of every definition in load order.
func (c *Catalog) List() []DefinitionSummary {
	out := make([]DefinitionSummary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Summarize(c.defs[id]))
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.order) }

func (c *Catalog) add(def *speedrun.RunDefinition) error {
	if def == nil || def.ID == "" {
		return errors.New("definition has no id")
	}
	id := DefinitionID(def.ID)
	if _, dup := c.defs[id]; dup {
		return fmt.Errorf("duplicate definition id %q", def.ID)
	}
	c.defs[id] = def
	c.order = append(c.order, id)
	return nil
}

// ReadDefinition reads and parses a definition file.
func ReadDefinition(path string) (*speedrun.RunDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return def, nil
}

// ParseDefinition decodes a YAML run definition. Omitted settings keep
// their zero value, which is speedrun.DefaultSettings. Unknown keys are an
// error so a misspelled setting does not silently fall back.
func ParseDefinition(data []byte) (*speedrun.RunDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	def := &speedrun.RunDefinition{Settings: speedrun.DefaultSettings()}
	if err := dec.Decode(def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	return def, nil
}

// Validate returns human-readable problems with def that the core will
// degrade around rather than reject.
func Validate(def *speedrun.RunDefinition) []string {
	var warnings []string
	if len(def.Segments) == 0 {
		warnings = append(warnings, "definition has no segments; runs will be canceled on creation")
	}
	seen := make(map[string]string)
	for i, seg := range def.Segments {
		if seg == nil {
			warnings = append(warnings, fmt.Sprintf("segment %d is empty and will be dropped", i))
			continue
		}
		if seg.ID == "" {
			warnings = append(warnings, fmt.Sprintf("segment %d %q has no id", i, seg.DisplayName()))
		}
		if len(seg.Steps) == 0 {
			warnings = append(warnings, fmt.Sprintf("segment %q has no steps and will be canceled", seg.DisplayName()))
		}
		for j, st := range seg.Steps {
			if st == nil {
				warnings = append(warnings, fmt.Sprintf("segment %q step %d is empty and will be dropped", seg.DisplayName(), j))
				continue
			}
			if st.ID == "" {
				warnings = append(warnings, fmt.Sprintf("segment %q step %d %q has no id", seg.DisplayName(), j, st.DisplayName()))
				continue
			}
			if prev, dup := seen[st.ID]; dup {
				warnings = append(warnings, fmt.Sprintf("step id %q is used in %q and %q; lookups resolve to the first", st.ID, prev, seg.DisplayName()))
				continue
			}
			seen[st.ID] = seg.DisplayName()
		}
	}
	return warnings
}
