package llm

import (
	"context"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
)

var heuristicCuisines = []string{
	"indian", "italian", "chinese", "mexican", "mediterranean",
	"japanese", "french", "american", "thai", "korean",
}

const heuristicClarify = "I didn't understand. Do you want to book, cancel or search?"

// Heuristic is a keyword classifier used when no model is reachable. It
// answers in the same {"intent","params"} shape a model would.
type Heuristic struct {
	Now func() time.Time
}

func NewHeuristic() *Heuristic {
	return &Heuristic{Now: time.Now}
}

func (h *Heuristic) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	return h.Classify(userText), nil
}

func (h *Heuristic) Classify(userText string) string {
	text := strings.ToLower(userText)
	number, hasNumber := firstNumber(text)

	switch {
	case containsAny(text, "book", "reserve", "table"):
		seats := 2
		if hasNumber {
			seats = number
		}
		when := h.now()
		if strings.Contains(text, "tomorrow") {
			when = when.AddDate(0, 0, 1)
		}
		return encode(contractx.IntentCreateReservation, map[string]any{
			"seats":    seats,
			"datetime": when.Format("2006-01-02T15:04:05"),
			"name":     "Guest",
		})
	case strings.Contains(text, "cancel"):
		if hasNumber && number != 0 {
			return encode(contractx.IntentCancelReservation, map[string]any{"restaurant_code": number})
		}
		return encode(contractx.IntentClarify, map[string]any{"question": "Provide the restaurant code to cancel."})
	case containsAny(text, "find", "suggest", "recommend", "where"):
		params := map[string]any{"cuisine": nil, "seats": nil}
		for _, cuisine := range heuristicCuisines {
			if strings.Contains(text, cuisine) {
				params["cuisine"] = cuisine
			}
		}
		if hasNumber {
			params["seats"] = number
		}
		return encode(contractx.IntentSearchRestaurants, params)
	default:
		return encode(contractx.IntentClarify, map[string]any{"question": heuristicClarify})
	}
}

func (h *Heuristic) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// firstNumber returns the first whitespace-separated token made only of
// digits.
func firstNumber(text string) (int, bool) {
	for _, tok := range strings.Fields(text) {
		if !isDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func encode(intent contractx.IntentName, params map[string]any) string {
	raw, err := json.Marshal(map[string]any{"intent": intent, "params": params})
	if err != nil {
		return `{"intent":"clarify","params":{"question":"` + heuristicClarify + `"}}`
	}
	return string(raw)
}
