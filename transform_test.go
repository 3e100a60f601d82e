package routequery

import (
	"encoding/json"
	"testing"
)

func TestScalarTransforms(t *testing.T) {
	n, err := AsInt().FromRaw(Value("42"))
	if err != nil || n != 42 {
		t.Fatalf("expected 42, got %d err=%v", n, err)
	}
	if _, err := AsInt().FromRaw(Value("x")); err == nil {
		t.Fatalf("expected parse error")
	}
	if n, _ := AsInt().FromRaw(Null()); n != 0 {
		t.Fatalf("expected null to read as 0, got %d", n)
	}
	if n, _ := AsInt().FromRaw(Values("7", "8")); n != 7 {
		t.Fatalf("expected first list element, got %d", n)
	}

	f, err := AsFloat().FromRaw(Value("2.5"))
	if err != nil || f != 2.5 {
		t.Fatalf("expected 2.5, got %v err=%v", f, err)
	}
	raw, _ := AsFloat().ToRaw(0.1)
	if s, _ := raw.Str(); s != "0.1" {
		t.Fatalf("expected shortest float form, got %q", s)
	}

	for input, want := range map[string]bool{"": true, "true": true, "0": false, "false": false} {
		got, err := AsBool().FromRaw(Value(input))
		if err != nil || got != want {
			t.Fatalf("AsBool(%q): expected %v, got %v err=%v", input, want, got, err)
		}
	}
	if flag, _ := AsBool().FromRaw(Null()); !flag {
		t.Fatalf("expected bare flag to read as true")
	}

	if s, _ := AsString().FromRaw(Null()); s != "" {
		t.Fatalf("expected null to read as empty string, got %q", s)
	}
}

func TestAsStrings(t *testing.T) {
	got, _ := AsStrings().FromRaw(Value("solo"))
	if len(got) != 1 || got[0] != "solo" {
		t.Fatalf("expected scalar to widen, got %v", got)
	}
	raw, _ := AsStrings().ToRaw(nil)
	if !raw.IsMissing() {
		t.Fatalf("expected nil slice to clear the field, got %s", raw)
	}
	raw, _ = AsStrings().ToRaw([]string{})
	if !raw.IsMissing() {
		t.Fatalf("expected empty slice to clear the field, got %s", raw)
	}
}

type filters struct {
	Status string   `json:"status"`
	Tags   []string `json:"tags,omitempty"`
}

func TestAsJSON(t *testing.T) {
	transform := AsJSON[filters]()
	raw, err := transform.ToRaw(filters{Status: "open", Tags: []string{"x"}})
	if err != nil {
		t.Fatalf("to raw: %v", err)
	}
	if s, _ := raw.Str(); s != `{"status":"open","tags":["x"]}` {
		t.Fatalf("unexpected payload %q", s)
	}
	back, err := transform.FromRaw(raw)
	if err != nil || back.Status != "open" || len(back.Tags) != 1 {
		t.Fatalf("unexpected decode %+v err=%v", back, err)
	}

	strict := AsJSON[filters](JSONDisallowUnknownFields())
	if _, err := strict.FromRaw(Value(`{"status":"open","extra":1}`)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}

	numbers := AsJSON[map[string]any](JSONUseNumber())
	decoded, err := numbers.FromRaw(Value(`{"n":12}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded["n"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", decoded["n"])
	}
}

func TestAsJSONBase64(t *testing.T) {
	transform := AsJSON[filters](JSONBase64())
	raw, err := transform.ToRaw(filters{Status: "open"})
	if err != nil {
		t.Fatalf("to raw: %v", err)
	}
	if s, _ := raw.Str(); s != "eyJzdGF0dXMiOiJvcGVuIn0" {
		t.Fatalf("unexpected payload %q", s)
	}
	back, err := transform.FromRaw(raw)
	if err != nil || back.Status != "open" {
		t.Fatalf("unexpected decode %+v err=%v", back, err)
	}
	if _, err := transform.FromRaw(Value("not base64!")); err == nil {
		t.Fatalf("expected base64 error")
	}
}

func TestAsJSONSynchronizer(t *testing.T) {
	h := newHarness(nil)
	f, err := New("filters", filters{Status: "all"}, h.opts(WithTransform(AsJSON[filters]()))...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = f.Set(filters{Status: "open"})
	h.loop.Drain()
	if got := h.store.doc.Encode(); got != "filters=%7B%22status%22%3A%22open%22%7D" {
		t.Fatalf("unexpected document %q", got)
	}
}
