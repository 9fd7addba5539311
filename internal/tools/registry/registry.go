package registry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/teemow/mcp-calendar/internal/logging"
)

type entry struct {
	descriptor Descriptor
	handler    Handler
}

// Registry holds the tool descriptors and their handlers. It is safe for
// concurrent use; in practice all registration happens at startup.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]entry
	order      []string
	middleware []Middleware
	logger     logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMiddleware wraps every handler registered afterwards. The first
// middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Registry) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithLogger sets the logger used for recovered panics and rejected calls.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool. Names must be unique and every parameter needs a name.
func (r *Registry) Register(d Descriptor, h Handler) error {
	if d.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if h == nil {
		return fmt.Errorf("tool %q has no handler", d.Name)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q declares a parameter without a name", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %q declares parameter %q twice", d.Name, p.Name)
		}
		seen[p.Name] = true
	}

	d.Params = append([]Param(nil), d.Params...)
	h = r.validating(d, r.recovering(d, h))
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](d, h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("tool %q is already registered", d.Name)
	}
	r.entries[d.Name] = entry{descriptor: d, handler: h}
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d Descriptor, h Handler) {
	if err := r.Register(d, h); err != nil {
		panic(err)
	}
}

// Descriptors returns all registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].descriptor)
	}
	return out
}

// Lookup returns the descriptor of the named tool.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.descriptor, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Validate checks raw arguments against the named tool.
func (r *Registry) Validate(name string, raw map[string]any) (Args, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return Args{}, &NotFoundError{ToolName: name}
	}
	return Validate(d, raw)
}

// Dispatch runs one invocation and always returns an envelope. Unknown tools,
// invalid arguments, handler errors and handler panics all become failure
// envelopes carrying the error text. Every call to a registered tool passes
// through the middleware, including calls rejected by validation; calls to
// unknown tools are only logged.
func (r *Registry) Dispatch(ctx context.Context, inv Invocation) Result {
	r.mu.RLock()
	e, ok := r.entries[inv.ToolName]
	r.mu.RUnlock()
	if !ok {
		err := &NotFoundError{ToolName: inv.ToolName}
		r.logger.Warn("rejected call to unknown tool", "tool", inv.ToolName)
		return Failure(err.Error())
	}

	// Validation runs inside the middleware chain so rejected arguments are
	// observed like any other failed call.
	value, err := e.handler(ctx, NewArgs(inv.ToolName, inv.Arguments))
	if err != nil {
		return Failure(err.Error())
	}

	text, err := encodeValue(value)
	if err != nil {
		return Failure(fmt.Sprintf("failed to encode result of tool %q: %v", inv.ToolName, err))
	}
	return Success(text)
}

// validating checks the raw arguments carried by args before h runs. The
// handler only ever sees arguments that passed Validate.
func (r *Registry) validating(d Descriptor, h Handler) Handler {
	return func(ctx context.Context, raw Args) (any, error) {
		args, err := Validate(d, raw.Map())
		if err != nil {
			r.logger.Debug("rejected tool arguments", "tool", d.Name, "fields", fieldNames(err))
			return nil, err
		}
		return h(ctx, args)
	}
}

func fieldNames(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.FieldNames()
	}
	return nil
}

// recovering converts a handler panic into an error so that middleware and
// the dispatcher see it like any other failure.
func (r *Registry) recovering(d Descriptor, h Handler) Handler {
	return func(ctx context.Context, args Args) (value any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("tool handler panicked",
					"tool", d.Name,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()))
				value = nil
				err = fmt.Errorf("internal error while running tool %q", d.Name)
			}
		}()
		return h(ctx, args)
	}
}
