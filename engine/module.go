package engine

import (
	"context"
	"time"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
)

const (
	GracefulRetryDelay = 3
)

// RunModuleWithGracefulRestart keeps a module running until it returns
// without error or ctx is done.
func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil || ctx.Err() != nil {
			break
		}
		Logger.Log.Errorf(
			"Module %s exited with error %v, retry in %d seconds",
			module.Name(),
			err,
			GracefulRetryDelay)

		// Wait for a small amount of time and restart.
		select {
		case <-time.After(GracefulRetryDelay * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance.
	Name() string
}
