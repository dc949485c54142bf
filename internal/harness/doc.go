// Package harness runs simulation scenarios and checks their event logs.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: odd_ring_quota
//	description: "Five actors eat seven meals each and nobody dies"
//	config:
//	  actors: 5
//	  die_ms: 800
//	  eat_ms: 200
//	  sleep_ms: 200
//	  quota: 7
//	timeout_ms: 20000
//	expect:
//	  outcome: completed
//	  deaths: 0
//	  meals_each: 7
//
// Unknown fields are rejected so a typo cannot silently disable a check.
//
// # Log Properties
//
// Every run, whatever its expectations, is checked against the properties
// any correct log has (see CheckLog):
//
//   - elapsed_monotonic: printed times never go backwards
//   - actor_range: actor ids are within 1..N
//   - single_death: at most one "died" line
//   - no_post_mortem: nothing is printed after "died"
//   - forks_before_eat: every "is eating" follows two "has taken a fork"
//   - exclusive_meals: neighbours never eat at overlapping times
//   - quota: no actor eats more than the quota
//
// # Recording
//
// Each scenario runs against a fresh in-memory store. The harness compares
// the printed output with the recorded events and the recorded digest, so
// a scenario also exercises the recording path end to end.
//
// # Golden Reports
//
// A run's Report leaves out everything timing-dependent, so scenarios with
// a deterministic outcome can be compared against golden files with
// AssertGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/single_actor.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
