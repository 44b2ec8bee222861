package engine

import (
	"context"
	"sync"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Engine runs background modules next to the web server. Modules share the
// in-process event bus the domain services publish to.
type Engine struct {
	// Module's lifetime is bound to Engine's lifetime. Each Module will be ran
	// in a separate routine.
	Modules []Module

	// Root this engine is running on
	ctx context.Context

	// Cancel function for root context, used for graceful shutdown
	cancel context.CancelFunc

	EventBus *gochannel.GoChannel

	wg sync.WaitGroup
}

func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		EventBus: e,
	}
}

// Start runs every module in its own goroutine and returns immediately.
func (e *Engine) Start() {
	for idx := range e.Modules {
		e.wg.Add(1)
		go func(m Module) {
			defer e.wg.Done()
			Logger.Log.Infof("start engine module %s", m.Name())
			RunModuleWithGracefulRestart(e.ctx, m)
			Logger.Log.Infof("Module %s finished execution.", m.Name())
		}(e.Modules[idx])
	}
}

func (e *Engine) Wait() {
	e.wg.Wait()
}

// Shutdown cancels the modules, closes the bus and waits for modules to exit.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("Starting graceful shutdown process. Goodbye!")
	e.cancel()
	if e.EventBus != nil {
		if err := e.EventBus.Close(); err != nil {
			Logger.Log.Error("fail to close event bus: ", err)
		}
	}
	e.wg.Wait()
}
