package utils

import (
	"github.com/Luismorlan/rambagiza/utils/dotenv"
	"github.com/Luismorlan/rambagiza/utils/flag"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func datadogEnv() string {
	if dotenv.IsProdEnv() {
		return "production"
	}
	return "development"
}

// StartTracer starts the Datadog tracer, traces are sent to the local agent.
func StartTracer() {
	tracer.Start(
		tracer.WithService(*flag.ServiceName),
		tracer.WithEnv(datadogEnv()),
	)
	Logger.Log.Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	// Datadog tracer
	tracer.Stop()
}
