package registry

import (
	"encoding/json"
	"math"
)

// Validate checks raw arguments against the parameters of d. Every failing
// parameter is reported, not just the first. Arguments d does not declare
// are ignored.
func Validate(d Descriptor, raw map[string]any) (Args, error) {
	var fields []FieldError
	values := make(map[string]any, len(d.Params))

	for _, p := range d.Params {
		v, present := raw[p.Name]
		if !present || v == nil {
			if !p.Optional {
				fields = append(fields, FieldError{Field: p.Name, Reason: "is required"})
			}
			continue
		}

		switch p.Type {
		case TypeString:
			s, ok := v.(string)
			switch {
			case !ok:
				fields = append(fields, FieldError{Field: p.Name, Reason: "must be a string"})
			case s == "" && !p.Optional:
				fields = append(fields, FieldError{Field: p.Name, Reason: "must not be empty"})
			default:
				values[p.Name] = s
			}
		case TypeNumber:
			f, ok := toFloat(v)
			if !ok {
				fields = append(fields, FieldError{Field: p.Name, Reason: "must be a finite number"})
				continue
			}
			values[p.Name] = f
		case TypeCoordinates:
			c, ok := toCoordinates(v)
			if !ok {
				fields = append(fields, FieldError{Field: p.Name, Reason: "must be an array of two numbers [longitude, latitude]"})
				continue
			}
			values[p.Name] = c
		default:
			fields = append(fields, FieldError{Field: p.Name, Reason: "has an unsupported type " + p.Type.String()})
		}
	}

	if len(fields) > 0 {
		return Args{}, &ValidationError{Tool: d.Name, Fields: fields}
	}
	return Args{tool: d.Name, values: values}, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toCoordinates(v any) ([2]float64, bool) {
	var out [2]float64
	switch c := v.(type) {
	case [2]float64:
		return c, true
	case []float64:
		if len(c) != 2 {
			return out, false
		}
		for i := range c {
			f, ok := toFloat(c[i])
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	case []any:
		if len(c) != 2 {
			return out, false
		}
		for i := range c {
			f, ok := toFloat(c[i])
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	default:
		return out, false
	}
}
