// Package harness runs registry scenarios.
//
// A scenario is a YAML file listing create, update, get and count steps
// with the outcome each step should have, plus assertions over the final
// event history and registry state. Each run starts from an empty
// in-memory feed with a deterministic clock and deterministic event ids,
// so the rendered trace is stable and can be compared with a golden file:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/owner_update.yaml")
//	result, err := harness.Run(scenario)
//	fmt.Print(harness.Render(scenario.Name, result))
//
// Golden files live in testdata/golden and are regenerated with
//
//	go test ./internal/harness -update
package harness
