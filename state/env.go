package state

import (
	"context"
	"log/slog"
)

// Env can be read from any goroutine.
type Env struct {
	Context context.Context
	Cancel  context.CancelCauseFunc
	Cfg     Config
	Log     *slog.Logger
}
