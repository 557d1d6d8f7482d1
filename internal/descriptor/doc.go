// Package descriptor holds the declarative model for a task's command-line
// shape: argument and option descriptors, and the checkers that coerce raw
// tokens into typed values. Descriptors are immutable value objects; all
// structural rules are enforced at registration time, never at call time.
package descriptor
