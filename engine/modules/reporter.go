package modules

import (
	"context"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/rambagiza/engine"
	"github.com/Luismorlan/rambagiza/events"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
)

const DDOG_EVENT_COUNTER = "rambagiza.event"

type ReporterConfig struct {
	Name string
}

// Reporter's job is to listen to the event bus and aggregate results,
// sending to Datadog for monitoring purpose.
type Reporter struct {
	engine.Module

	Config ReporterConfig

	Statsd statsd.ClientInterface

	EventBus message.Subscriber
}

func NewReporter(config ReporterConfig, statsd statsd.ClientInterface, e message.Subscriber) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportEvent counts one domain event in datadog.
func ReportEvent(e events.Event, client statsd.ClientInterface) {
	err := client.Incr(DDOG_EVENT_COUNTER, []string{"type:" + e.Type}, 1)
	if err != nil {
		Logger.Log.Infoln("cannot report event", e.Type)
	}
}

func (r *Reporter) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := subscribeAll(ctx, r.EventBus, events.AllTopics)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		e, err := events.Decode(msg)
		if err != nil {
			return err
		}
		ReportEvent(e, r.Statsd)
	}
	return nil
}

func (r *Reporter) Name() string {
	return r.Config.Name
}
