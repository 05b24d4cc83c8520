package intent

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	"github.com/xeipuuv/gojsonschema"
)

type ParamType string

const (
	TypeString      ParamType = "string"
	TypeInteger     ParamType = "integer"
	TypeStringArray ParamType = "string_array"
)

type Param struct {
	Name     string
	Type     ParamType
	Desc     string
	Required bool
}

// Spec describes one intent the model may select.
type Spec struct {
	Name        contractx.IntentName
	Description string
	Params      []Param
}

// Registry is the fixed, ordered intent table.
type Registry struct {
	specs   []Spec
	byName  map[contractx.IntentName]int
	schemas map[contractx.IntentName]*gojsonschema.Schema
}

func New(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs:   make([]Spec, 0, len(specs)),
		byName:  make(map[contractx.IntentName]int, len(specs)),
		schemas: make(map[contractx.IntentName]*gojsonschema.Schema, len(specs)),
	}
	for _, spec := range specs {
		if strings.TrimSpace(string(spec.Name)) == "" {
			return nil, fmt.Errorf("%w: intent name is required", contractx.ErrValidation)
		}
		if _, ok := r.byName[spec.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate intent %s", contractx.ErrValidation, spec.Name)
		}

		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(spec.validationSchema()))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", spec.Name, err)
		}

		r.byName[spec.Name] = len(r.specs)
		r.specs = append(r.specs, spec)
		r.schemas[spec.Name] = compiled
	}
	return r, nil
}

var defaultRegistry = mustNew(DefaultSpecs()...)

func mustNew(specs ...Spec) *Registry {
	r, err := New(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the GoodFoods intent table.
func Default() *Registry {
	return defaultRegistry
}

func DefaultSpecs() []Spec {
	return []Spec{
		{
			Name:        contractx.IntentSearchRestaurants,
			Description: "Search restaurants by cuisine, party size, and features.",
			Params: []Param{
				{Name: "cuisine", Type: TypeString, Desc: "Preferred cuisine, e.g. 'Italian'"},
				{Name: "seats", Type: TypeInteger, Desc: "Number of people"},
				{Name: "features", Type: TypeStringArray, Desc: "Desired features, e.g. ['outdoor', 'parking']"},
			},
		},
		{
			Name:        contractx.IntentCreateReservation,
			Description: "Create a reservation at a restaurant for a specific date/time.",
			Params: []Param{
				{Name: "restaurant_id", Type: TypeInteger, Desc: "ID of the restaurant"},
				{Name: "cuisine", Type: TypeString, Desc: "Cuisine preference if restaurant_id is not provided"},
				{Name: "seats", Type: TypeInteger, Desc: "Number of people", Required: true},
				{Name: "datetime", Type: TypeString, Desc: "ISO 8601 datetime string, e.g. '2025-11-26T19:00:00'", Required: true},
				{Name: "name", Type: TypeString, Desc: "Name for the reservation"},
				{Name: "phone", Type: TypeString, Desc: "Phone number"},
				{Name: "email", Type: TypeString, Desc: "Email address"},
			},
		},
		{
			Name:        contractx.IntentCancelReservation,
			Description: "Cancel the latest confirmed reservation at a restaurant, identified by its restaurant code.",
			Params: []Param{
				{Name: "restaurant_code", Type: TypeInteger, Desc: "Restaurant code (restaurant id) of the reservation to cancel", Required: true},
			},
		},
		{
			Name:        contractx.IntentListReservations,
			Description: "List recent reservations for admin/debug purposes.",
		},
		{
			Name:        contractx.IntentClarify,
			Description: "Ask the user for clarification when the request is ambiguous.",
			Params: []Param{
				{Name: "question", Type: TypeString, Desc: "Clarifying question to ask the user", Required: true},
			},
		},
	}
}

func (r *Registry) Lookup(name contractx.IntentName) (Spec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

func (r *Registry) Names() []contractx.IntentName {
	out := make([]contractx.IntentName, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec.Name)
	}
	return out
}

func (r *Registry) Specs() []Spec {
	return append([]Spec(nil), r.specs...)
}

// Describe renders the intent table for the system prompt. The output is
// deterministic for a given registry.
func (r *Registry) Describe() string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	for _, spec := range r.specs {
		fmt.Fprintf(&b, "- Tool name: %s\n", spec.Name)
		fmt.Fprintf(&b, "  Description: %s\n", spec.Description)
		b.WriteString("  Input JSON schema:\n")
		raw, err := json.Marshal(spec.InputSchema())
		if err != nil {
			raw = []byte("{}")
		}
		fmt.Fprintf(&b, "  %s\n\n", raw)
	}
	b.WriteString("When you decide what to do, respond with a SINGLE JSON object:\n")
	b.WriteString("{\n  \"intent\": \"<tool_name>\",\n  \"params\": { ... arguments according to the inputSchema ... }\n}\n")
	b.WriteString("Do NOT include any other text outside the JSON.")
	return b.String()
}
