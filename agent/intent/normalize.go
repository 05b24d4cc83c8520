package intent

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	"github.com/tanpawarit/goodfoods-agent/agent/extract"
	"github.com/tanpawarit/goodfoods-agent/pkg/metrics"
)

const (
	EmptyReplyQuestion = "I didn't get a valid response. Could you try again?"
	RephraseQuestion   = "I'm having trouble understanding your request. Could you rephrase it? " +
		"For example: 'Book a table for 2 at 7pm tomorrow' or 'Find Italian restaurants for 4 people'."
)

// Decode parses raw model output with the default registry.
func Decode(raw string) (contractx.IntentRequest, error) {
	return defaultRegistry.Decode(raw)
}

// Normalize is Decode that never fails.
func Normalize(raw string) contractx.IntentRequest {
	return defaultRegistry.Normalize(raw)
}

// Normalize converts raw model output into an IntentRequest, replacing
// anything unusable with a clarify request.
func (r *Registry) Normalize(raw string) (req contractx.IntentRequest) {
	if strings.TrimSpace(raw) == "" {
		metrics.NormalizerFallbacks.WithLabelValues("empty").Inc()
		return contractx.ClarifyRequest(EmptyReplyQuestion)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("normalize_panic")
			metrics.NormalizerFallbacks.WithLabelValues("panic").Inc()
			req = contractx.ClarifyRequest(RephraseQuestion)
		}
	}()

	req, err := r.Decode(raw)
	if err != nil {
		log.Debug().Err(err).Str("raw", truncate(raw, 200)).Msg("normalize_fallback")
		metrics.NormalizerFallbacks.WithLabelValues("invalid").Inc()
		return contractx.ClarifyRequest(RephraseQuestion)
	}
	return req
}

// Decode accepts the whole trimmed text when it is a JSON object with an
// "intent" key, otherwise the span from the first '{' to the last '}'.
func (r *Registry) Decode(raw string) (contractx.IntentRequest, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return contractx.IntentRequest{}, fmt.Errorf("%w: empty model output", contractx.ErrInvalidMessage)
	}

	obj, ok := intentObject(text)
	if !ok {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start >= 0 && end > start {
			obj, ok = intentObject(text[start : end+1])
		}
	}
	if !ok {
		return contractx.IntentRequest{}, fmt.Errorf("%w: no JSON object with an intent key", contractx.ErrSchemaViolation)
	}

	// A non-string intent keeps its raw JSON text and is treated as unregistered.
	nameField := obj.Get("intent")
	name := contractx.IntentName(nameField.Raw)
	if nameField.Type == gjson.String {
		name = contractx.IntentName(nameField.String())
	}

	params := map[string]any{}
	paramsField := obj.Get("params")
	switch {
	case !paramsField.Exists() || paramsField.Type == gjson.Null:
	case paramsField.IsObject():
		if err := json.Unmarshal([]byte(paramsField.Raw), &params); err != nil {
			return contractx.IntentRequest{}, fmt.Errorf("%w: decode params: %v", contractx.ErrSchemaViolation, err)
		}
		if params == nil {
			params = map[string]any{}
		}
	default:
		return contractx.IntentRequest{}, fmt.Errorf("%w: params must be an object", contractx.ErrSchemaViolation)
	}

	req := contractx.IntentRequest{Intent: name, Params: params}
	if _, registered := r.Lookup(name); !registered {
		return req, nil
	}
	if err := r.validate(name, params); err != nil {
		return contractx.IntentRequest{}, err
	}

	switch name {
	case contractx.IntentSearchRestaurants:
		seats, _ := extract.Int(params["seats"])
		req.Search = &contractx.SearchParams{
			Cuisine:  extract.String(params["cuisine"]),
			Seats:    seats,
			Features: extract.Strings(params["features"]),
		}
	case contractx.IntentCreateReservation:
		seats, _ := extract.Int(params["seats"])
		create := &contractx.CreateParams{
			Cuisine:  extract.String(params["cuisine"]),
			Seats:    seats,
			Datetime: extract.String(params["datetime"]),
			Name:     extract.String(params["name"]),
			Phone:    extract.String(params["phone"]),
			Email:    extract.String(params["email"]),
		}
		if id, ok := extract.Int(params["restaurant_id"]); ok {
			create.RestaurantID = &id
		}
		req.Create = create
	case contractx.IntentCancelReservation:
		req.Cancel = &contractx.CancelParams{Code: extract.String(params["restaurant_code"])}
	case contractx.IntentClarify:
		req.Clarify = &contractx.ClarifyParams{Question: extract.String(params["question"])}
	}
	return req, nil
}

func (r *Registry) validate(name contractx.IntentName, params map[string]any) error {
	compiled, ok := r.schemas[name]
	if !ok {
		return nil
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return fmt.Errorf("%w: validate %s params: %v", contractx.ErrSchemaViolation, name, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("%w: %s params: %s", contractx.ErrSchemaViolation, name, strings.Join(problems, "; "))
}

func intentObject(text string) (gjson.Result, bool) {
	if !gjson.Valid(text) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(text)
	if !obj.IsObject() || !obj.Get("intent").Exists() {
		return gjson.Result{}, false
	}
	return obj, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
