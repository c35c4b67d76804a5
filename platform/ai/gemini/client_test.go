package gemini

import (
	"errors"
	"testing"
)

type turn struct {
	Reply  string         `json:"reply"`
	Fields map[string]any `json:"fields"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		reply string
	}{
		{"plain", `{"reply":"Olá!","fields":{}}`, "Olá!"},
		{"fenced", "```json\n{\"reply\":\"Oi\",\"fields\":{\"bedrooms\":3}}\n```", "Oi"},
		{"prose around", "Claro! {\"reply\":\"Certo\"} Espero ter ajudado.", "Certo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got turn
			if err := DecodeJSON(tc.raw, &got); err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}
			if got.Reply != tc.reply {
				t.Fatalf("reply = %q, want %q", got.Reply, tc.reply)
			}
		})
	}
}

func TestDecodeJSONUnparseable(t *testing.T) {
	for _, raw := range []string{"", "desculpe", "{not json}"} {
		var got turn
		err := DecodeJSON(raw, &got)
		if !errors.Is(err, ErrUnparseable) {
			t.Fatalf("DecodeJSON(%q) err = %v, want ErrUnparseable", raw, err)
		}
	}
}
