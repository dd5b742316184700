package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recordregistry/internal/record"
	"github.com/roach88/recordregistry/internal/registry"
)

// Scenario is a sequence of registry calls with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh registry.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final event history and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpGet    = "get"
	OpCount  = "count"
)

// Step is one registry call.
type Step struct {
	Op string `yaml:"op"`

	// As is the caller for create and update.
	As string `yaml:"as,omitempty"`

	// ID is the record id for update and get.
	ID int64 `yaml:"id,omitempty"`

	// Data is the payload for create and update.
	Data string `yaml:"data,omitempty"`

	// Expect is checked against the step's outcome. If nil the step
	// must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes a step's expected outcome. Only the fields that are set
// are compared.
type Expect struct {
	// Error is the expected error code. Empty means success.
	Error string `yaml:"error,omitempty"`

	ID    *int64  `yaml:"id,omitempty"`
	Data  *string `yaml:"data,omitempty"`
	Owner string  `yaml:"owner,omitempty"`
	Count *int64  `yaml:"count,omitempty"`
}

// Assertion validates the final event history or registry state.
type Assertion struct {
	// Type is one of event_count, event_order, final_record, final_count.
	Type string `yaml:"type"`

	// Kind filters event_count. Empty counts every event.
	Kind string `yaml:"kind,omitempty"`

	// Kinds is the exact kind sequence for event_order.
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is used by event_count and final_count.
	Count *int64 `yaml:"count,omitempty"`

	// ID, Data and Owner are used by final_record.
	ID    int64   `yaml:"id,omitempty"`
	Data  *string `yaml:"data,omitempty"`
	Owner string  `yaml:"owner,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount  = "event_count"
	AssertEventOrder  = "event_order"
	AssertFinalRecord = "final_record"
	AssertFinalCount  = "final_count"
)

var knownErrors = map[string]bool{
	string(registry.CodeRecordNotFound): true,
	string(registry.CodeNotOwner):       true,
	OutcomeInvalidPrincipal:             true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml file in dir, sorted by file name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Op {
	case OpCreate:
		if step.As == "" {
			return fmt.Errorf("steps[%d]: as is required for create", i)
		}
	case OpUpdate:
		if step.As == "" {
			return fmt.Errorf("steps[%d]: as is required for update", i)
		}
		if step.ID == 0 {
			return fmt.Errorf("steps[%d]: id is required for update", i)
		}
	case OpGet:
		if step.ID == 0 {
			return fmt.Errorf("steps[%d]: id is required for get", i)
		}
	case OpCount:
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	if step.Expect != nil && step.Expect.Error != "" && !knownErrors[step.Expect.Error] {
		return fmt.Errorf("steps[%d].expect: unknown error code %q", i, step.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for event_count", index)
		}
		if a.Kind != "" {
			if _, err := record.ParseEventKind(a.Kind); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertEventOrder:
		for _, k := range a.Kinds {
			if _, err := record.ParseEventKind(k); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertFinalRecord:
		if a.ID == 0 {
			return fmt.Errorf("assertions[%d]: id is required for final_record", index)
		}
		if a.Data == nil && a.Owner == "" {
			return fmt.Errorf("assertions[%d]: data or owner is required for final_record", index)
		}
	case AssertFinalCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for final_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
