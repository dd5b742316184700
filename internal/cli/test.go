package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/recordregistry/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	GoldenDir string // overrides the golden directory next to each scenario
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run registry scenarios",
		Long: `Run YAML scenarios against a fresh in-memory registry and check their
expectations and assertions. If a golden file named after the scenario
exists (by default in a "golden" directory next to the scenario
directory), the rendered trace must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  recreg test ./testdata/scenarios
  recreg test ./testdata/scenarios/owner_update.yaml --verbose
  recreg test ./testdata/scenarios --update`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "directory holding golden files")

	return cmd
}

type scenarioFile struct {
	path     string
	scenario *harness.Scenario
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	files, err := collectScenarios(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, sf := range files {
		sr := runScenario(opts, sf, cmd)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	f := opts.formatter(cmd)
	if opts.Format == FormatJSON {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, sr := range result.Scenarios {
			if sr.Pass {
				fmt.Fprintf(w, "✓ %s\n", sr.Name)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// collectScenarios loads scenario files and every *.yaml file in scenario
// directories, in argument order.
func collectScenarios(paths []string) ([]scenarioFile, error) {
	var files []scenarioFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		var candidates []string
		if info.IsDir() {
			candidates, err = filepath.Glob(filepath.Join(p, "*.yaml"))
			if err != nil {
				return nil, err
			}
			slices.Sort(candidates)
		} else {
			candidates = []string{p}
		}

		for _, c := range candidates {
			s, err := harness.LoadScenario(c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c, err)
			}
			files = append(files, scenarioFile{path: c, scenario: s})
		}
	}
	return files, nil
}

func runScenario(opts *TestOptions, sf scenarioFile, cmd *cobra.Command) ScenarioResult {
	name := sf.scenario.Name
	result, err := harness.RunWithLogger(sf.scenario, discardUnlessVerbose(opts.RootOptions, cmd))
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}

	rendered := harness.Render(name, result)
	opts.formatter(cmd).VerboseLog("%s", rendered)

	errs := result.Errors
	goldenPath := filepath.Join(goldenDir(opts, sf.path), name+".golden")
	if opts.Update {
		if err := writeGolden(goldenPath, rendered); err != nil {
			errs = append(errs, err.Error())
		}
	} else if want, err := os.ReadFile(goldenPath); err == nil {
		if string(want) != rendered {
			errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
		}
	} else if !os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
	}

	return ScenarioResult{Name: name, Pass: len(errs) == 0, Errors: errs}
}

// goldenDir returns --golden, or the "golden" directory next to the
// scenario's directory.
func goldenDir(opts *TestOptions, scenarioPath string) string {
	if opts.GoldenDir != "" {
		return opts.GoldenDir
	}
	return filepath.Join(filepath.Dir(filepath.Dir(scenarioPath)), "golden")
}

func writeGolden(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
