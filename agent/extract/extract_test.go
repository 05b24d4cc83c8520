package extract

import (
	"reflect"
	"testing"
)

func TestRestaurantCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{text: "cancel reservation 16", want: "16", wantOK: true},
		{text: "cancel id=7", want: "7", wantOK: true},
		{text: "cancel ID: 12 please", want: "12", wantOK: true},
		{text: "cancel #3", want: "3", wantOK: true},
		{text: "cancel my reservation", wantOK: false},
		{text: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := RestaurantCode(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("RestaurantCode(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     any
		want   int
		wantOK bool
	}{
		{in: 4, want: 4, wantOK: true},
		{in: float64(6), want: 6, wantOK: true},
		{in: 2.5, wantOK: false},
		{in: " 8 ", want: 8, wantOK: true},
		{in: "3.0", want: 3, wantOK: true},
		{in: "four", wantOK: false},
		{in: nil, wantOK: false},
		{in: true, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := Int(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("Int(%#v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	if got := Strings("outdoor"); !reflect.DeepEqual(got, []string{"outdoor"}) {
		t.Fatalf("Strings(string) = %v", got)
	}
	if got := Strings([]any{"outdoor", " parking ", ""}); !reflect.DeepEqual(got, []string{"outdoor", "parking"}) {
		t.Fatalf("Strings([]any) = %v", got)
	}
	if got := Strings(nil); got != nil {
		t.Fatalf("Strings(nil) = %v", got)
	}
	if got := String(float64(16)); got != "16" {
		t.Fatalf("String(16.0) = %q", got)
	}
}
