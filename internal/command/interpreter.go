package command

import (
	"fmt"

	"go.uber.org/zap"
)

// Interpreter glues resolution and dispatch for one input line at a time.
// A handler panic is caught at this outermost level and reported generically;
// it never terminates the session.
type Interpreter struct {
	resolver *Resolver
	log      *zap.Logger
}

func NewInterpreter(resolver *Resolver, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{resolver: resolver, log: log}
}

// Resolver exposes the underlying resolver, e.g. to refresh the project
// index between lines.
func (i *Interpreter) Resolver() *Resolver { return i.resolver }

// Execute resolves, validates and dispatches one line, returning the
// handler's rendered output.
func (i *Interpreter) Execute(line string) (out string, err error) {
	res, rerr := i.resolver.Resolve(line)
	if rerr != nil {
		return "", rerr
	}

	defer func() {
		if r := recover(); r != nil {
			i.log.Error("handler panicked",
				zap.String("domain", res.Context.Domain),
				zap.String("action", res.Context.Action),
				zap.Any("panic", r))
			err = fmt.Errorf("command failed: %s %s", res.Context.Domain, res.Context.Action)
		}
	}()

	i.log.Debug("dispatching",
		zap.String("domain", res.Context.Domain),
		zap.String("action", res.Context.Action))
	return res.Handler(res.Context)
}
