// Package harness simulates failure policies against scripted failures.
//
// A scenario picks one built-in policy and feeds it a timeline of steps.
// Each step either succeeds or fails with an identity, a message and an
// optional level or cooldown override. The harness runs the real policy
// through sysfail.Guard with a manual clock, a recording event bus and a
// capturing logger, and records what each step produced.
//
// # Scenario Format
//
//	name: menu_dedup
//	description: "repeats inside the cooldown are suppressed"
//	policy: Log
//	level: warn
//	cooldown: 1s
//	steps:
//	  - at: 0s
//	    fail: { id: NotFound, message: "menu not found" }
//	  - at: 300ms
//	    fail: { id: NotFound, message: "menu not found" }
//	  - at: 500ms
//	assertions:
//	  - type: reported_count
//	    count: 1
//	  - type: outcome
//	    step: 1
//	    outcome: suppressed
//
// # Outcomes
//
// Every step yields one of ok, reported, suppressed, silent, emitted or
// ignored. Steps are numbered from zero.
//
// # Deterministic Testing
//
// Step times drive a testutil.ManualClock and runs use a fixed run id when
// the scenario names one, so traces are byte-stable for golden files:
//
//	go test ./internal/harness -update
package harness
