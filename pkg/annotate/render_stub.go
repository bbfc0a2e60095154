//go:build noebiten

package annotate

import (
	"errors"

	"github.com/opd-ai/go-annotate/internal/config"
	"github.com/opd-ai/go-annotate/internal/paint"
)

// gameRunner is empty in noebiten builds, which only run headless.
type gameRunner struct {
	err error
}

func newGameRunner(*overlayImpl, *paint.Presets) (*gameRunner, error) {
	return nil, errors.New("built without window support (noebiten); use Options.Headless")
}

func (gr *gameRunner) run(o *overlayImpl) {
	<-o.ctx.Done()
}

func (gr *gameRunner) reload(*paint.Presets, *config.Config) {}

func (gr *gameRunner) compositorHealth() ComponentHealth {
	return ComponentHealth{HealthUnhealthy, "no window support"}
}
