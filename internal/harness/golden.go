package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// RunWithGolden executes a scenario and compares its report against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The dead actor is part of the report only when the scenario expects a
// specific one.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result.Report(scenario.Expect.DiedActor != 0)); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a report against a golden file.
//
// Parameters:
//   - t: testing.T instance for test assertions
//   - name: used for the golden file (without extension)
//   - report: the timing-free report of a run
func AssertGolden(t *testing.T, name string, report Report) error {
	t.Helper()

	data, err := ir.MarshalCanonical(report.CanonicalMap())
	if err != nil {
		return err
	}

	// Compare with golden file using goldie
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
