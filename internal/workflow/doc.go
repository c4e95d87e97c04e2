// Package workflow implements the Temporal workflow definitions for
// transformation job tracking.
//
// Workflows here define the high-level process flow and delegate all I/O,
// polling, and clock access to activities. They follow Temporal practice:
// deterministic execution, versioning gates, and typed error handling so
// callers can distinguish validation failures from tracking failures.
package workflow
