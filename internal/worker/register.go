package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-modernize/internal/tracking"
	"github.com/ahrav/go-modernize/internal/transform/configuration"
	"github.com/ahrav/go-modernize/internal/workflow"
	"github.com/ahrav/go-modernize/pkg/activity"
	"github.com/ahrav/go-modernize/pkg/events"
)

// RegisterAll registers the transformation workflow and tracking activities
// with the Temporal worker. Must be called once during worker startup before
// the worker runs; registration is not thread-safe.
func RegisterAll(w sdkworker.Worker, p tracking.StatusPoller, cfg *configuration.Config) {
	eventSink := events.NewNoOpEventSink()
	base := activity.NewBaseActivities(eventSink)

	trackingActivities := tracking.NewActivities(base, p, cfg.Poll.Interval, cfg.Poll.Timeout)

	w.RegisterWorkflow(workflow.TransformationWorkflow)
	w.RegisterActivity(trackingActivities.TrackTransformation)
}
