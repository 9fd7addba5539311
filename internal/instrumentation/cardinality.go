package instrumentation

// Operation label values for upstream metrics and spans.
const (
	OperationList       = "list"
	OperationGet        = "get"
	OperationCreate     = "create"
	OperationUpdate     = "update"
	OperationDelete     = "delete"
	OperationDirections = "directions"
	OperationGeocode    = "geocode"
)

// PathOther replaces request paths the server does not route.
const PathOther = "other"

var knownPaths = map[string]bool{
	"/mcp":              true,
	"/healthz":          true,
	"/readyz":           true,
	"/healthz/detailed": true,
	"/metrics":          true,
}

// NormalizePath bounds the cardinality of the HTTP path label. Scanners and
// misconfigured clients would otherwise mint a new series per probed URL.
//
//	NormalizePath("/mcp")         // "/mcp"
//	NormalizePath("/wp-login.php") // "other"
func NormalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return PathOther
}
