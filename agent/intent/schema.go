package intent

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
)

// InputSchema is the JSON schema advertised to the model.
func (s Spec) InputSchema() map[string]any {
	properties := make(map[string]any, len(s.Params))
	required := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		prop := map[string]any{"description": p.Desc}
		switch p.Type {
		case TypeInteger:
			prop["type"] = "integer"
		case TypeStringArray:
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		default:
			prop["type"] = "string"
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// validationSchema is what decoded params are checked against. It keeps
// the declared property set but relaxes types: integers may arrive as
// numeric strings, strings as numbers, arrays as a single string, and any
// value may be null. Required keys are not enforced; the dispatcher
// defaults every one of them.
func (s Spec) validationSchema() map[string]any {
	properties := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		switch p.Type {
		case TypeInteger:
			properties[p.Name] = map[string]any{"type": []string{"integer", "string", "null"}}
		case TypeStringArray:
			properties[p.Name] = map[string]any{
				"anyOf": []any{
					map[string]any{"type": "array", "items": map[string]any{"type": []string{"string", "number"}}},
					map[string]any{"type": "string"},
					map[string]any{"type": "null"},
				},
			}
		default:
			properties[p.Name] = map[string]any{"type": []string{"string", "number", "null"}}
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

// JSONSchema returns the validation schema of a registered intent.
func (r *Registry) JSONSchema(name contractx.IntentName) (map[string]any, bool) {
	spec, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return spec.validationSchema(), true
}

// ToolInfos exposes the intents as tools for tool-calling chat models.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(r.specs))
	for _, spec := range r.specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, p := range spec.Params {
			info := &schema.ParameterInfo{Desc: p.Desc, Required: p.Required}
			switch p.Type {
			case TypeInteger:
				info.Type = schema.Integer
			case TypeStringArray:
				info.Type = schema.Array
				info.ElemInfo = &schema.ParameterInfo{Type: schema.String}
			default:
				info.Type = schema.String
			}
			params[p.Name] = info
		}

		out = append(out, &schema.ToolInfo{
			Name:        string(spec.Name),
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return out
}
