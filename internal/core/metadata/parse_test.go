package metadata

import (
	"testing"

	"github.com/kirillkom/fincadocs/internal/core/ports"
)

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name string
		gen  ports.Generation
		key  string
		want any
	}{
		{"structured", ports.Generation{Structured: map[string]any{"a": 1.0}, Text: "ignored"}, "a", 1.0},
		{"plain", ports.Generation{Text: `{"a": "x"}`}, "a", "x"},
		{"fenced", ports.Generation{Text: "Aquí tienes:\n```json\n{\"a\": 2}\n```\nSaludos"}, "a", 2.0},
		{"prose", ports.Generation{Text: `Resultado: {"a": "usa {llaves} y \"comillas\"", "b": 1} fin`}, "a", `usa {llaves} y "comillas"`},
		{"second candidate", ports.Generation{Text: `{no es json} y luego {"a": true}`}, "a", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseResponse(tc.gen)
			if got == nil || got[tc.key] != tc.want {
				t.Fatalf("ParseResponse() = %#v, want %s=%#v", got, tc.key, tc.want)
			}
		})
	}
}

func TestParseResponseFailures(t *testing.T) {
	for _, text := range []string{"", "no hay datos", "{\"a\": 1", "[1, 2, 3]"} {
		if got := ParseResponse(ports.Generation{Text: text}); got != nil {
			t.Fatalf("ParseResponse(%q) = %#v, want nil", text, got)
		}
	}
}
