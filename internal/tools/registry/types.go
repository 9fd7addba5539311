package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// ParamType is the type of a tool parameter.
type ParamType int

const (
	TypeString ParamType = iota
	TypeNumber
	// TypeCoordinates is a [longitude, latitude] pair of numbers.
	TypeCoordinates
)

func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeCoordinates:
		return "coordinates"
	default:
		return "unknown"
	}
}

// Param declares one named parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Optional    bool
	Description string
}

// StringParam declares a required string parameter.
func StringParam(name, description string) Param {
	return Param{Name: name, Type: TypeString, Description: description}
}

// NumberParam declares a required number parameter.
func NumberParam(name, description string) Param {
	return Param{Name: name, Type: TypeNumber, Description: description}
}

// CoordinatesParam declares a required [longitude, latitude] parameter.
func CoordinatesParam(name, description string) Param {
	return Param{Name: name, Type: TypeCoordinates, Description: description}
}

// AsOptional returns a copy of p that may be omitted.
func (p Param) AsOptional() Param {
	p.Optional = true
	return p
}

// Descriptor is the static declaration of a tool. Params keep their
// declaration order, which is also the order validation failures are reported in.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param

	// ReadOnly and Destructive are surfaced to clients as tool annotations.
	ReadOnly    bool
	Destructive bool

	// Service and Operation label the upstream call for metrics and audit logs.
	Service   string
	Operation string
}

// Handler runs a tool with validated arguments. The returned value is
// serialized to JSON for the success envelope.
type Handler func(ctx context.Context, args Args) (any, error)

// Middleware decorates the handler of a tool when it is registered.
type Middleware func(d Descriptor, next Handler) Handler

// Invocation is a request to run the named tool.
type Invocation struct {
	ToolName  string
	Arguments map[string]any
}

// ContentBlockText is the only content kind produced by this server.
const ContentBlockText = "text"

// ContentBlock is a single piece of tool output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the envelope returned for every invocation.
type Result struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Success wraps text in a success envelope.
func Success(text string) Result {
	return Result{Content: []ContentBlock{{Type: ContentBlockText, Text: text}}}
}

// Failure wraps a diagnostic message in a failure envelope.
func Failure(message string) Result {
	return Result{Content: []ContentBlock{{Type: ContentBlockText, Text: message}}, IsError: true}
}

// Text joins the text of all content blocks.
func (r Result) Text() string {
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	var sb strings.Builder
	for _, block := range r.Content {
		sb.WriteString(block.Text)
	}
	return sb.String()
}

// encodeValue renders a handler value as the JSON text of a success envelope.
// json.RawMessage values are passed through after compaction.
func encodeValue(v any) (string, error) {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
