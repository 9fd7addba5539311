package registry

// Args holds the arguments of one call. Handlers only receive arguments that
// passed validation against their Descriptor; middleware sees them as sent.
// Accessors return zero values for absent or mistyped arguments.
type Args struct {
	tool   string
	values map[string]any
}

// NewArgs wraps raw argument values. The dispatcher uses it for incoming
// calls and tests use it to drive handlers directly.
func NewArgs(tool string, values map[string]any) Args {
	return Args{tool: tool, values: values}
}

// Tool returns the name of the tool the arguments belong to.
func (a Args) Tool() string {
	return a.tool
}

// Has reports whether the argument was supplied.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a string argument.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// OptionalString returns a string argument and whether it was supplied.
func (a Args) OptionalString(name string) (string, bool) {
	s, ok := a.values[name].(string)
	return s, ok
}

// Number returns a number argument.
func (a Args) Number(name string) float64 {
	f, _ := toFloat(a.values[name])
	return f
}

// Coordinates returns a [longitude, latitude] argument.
func (a Args) Coordinates(name string) [2]float64 {
	c, _ := toCoordinates(a.values[name])
	return c
}

// Map returns the raw argument values.
func (a Args) Map() map[string]any {
	return a.values
}
