// Package core contains the pure domain model of the user service: the User
// aggregate, its domain events (UserCreated, UserUpdated, UserDeleted) and the
// Actor reference type.
//
// The package has no infrastructure dependencies. State changes flow through the
// aggregate's mutation methods, which validate invariants, apply the transition
// and record the event; reconstruction flows through UserFromHistory, which only
// runs the state-transition handler and never re-raises events.
package core
