package metadata

import "testing"

func TestParseLocaleNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56 €", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"1.234", 1234, true},
		{"1.234.567", 1234567, true},
		{"12.5", 12.5, true},
		{"0.125", 0.125, true},
		{"1,5", 1.5, true},
		{"21%", 21, true},
		{"EUR 350", 350, true},
		{"-12,30", -12.3, true},
		{"12-30", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLocaleNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseLocaleNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDateNormalization(t *testing.T) {
	cases := map[string]string{
		"2024-03-05":           "2024-03-05",
		"05/03/2024":           "2024-03-05",
		"5-3-2024":             "2024-03-05",
		"05.03.2024":           "2024-03-05",
		"2024/03/05":           "2024-03-05",
		"5/3/24":               "2024-03-05",
		"2024-03-05T10:00:00Z": "2024-03-05",
		"19 de mayo de 2022":   "2022-05-19",
		"1 de Marzo del 2023":  "2023-03-01",
	}
	for in, want := range cases {
		got := Date(in)
		if got == nil || *got != want {
			t.Fatalf("Date(%q) = %v, want %s", in, got, want)
		}
	}
	for _, in := range []any{"31/02/2024", "mañana", "32 de enero de 2024", 20240305.0, nil} {
		if got := Date(in); got != nil {
			t.Fatalf("Date(%v) = %s, want nil", in, *got)
		}
	}
}

func TestBoolTruthyValues(t *testing.T) {
	for _, v := range []any{true, "Sí", "si", "X", "yes", "1", 1.0, "verdadero"} {
		if got := Bool(v); got == nil || !*got {
			t.Fatalf("Bool(%v) should be true", v)
		}
	}
	for _, v := range []any{false, "No", "0", 0.0, "falso"} {
		if got := Bool(v); got == nil || *got {
			t.Fatalf("Bool(%v) should be false", v)
		}
	}
	for _, v := range []any{"quizá", 2.0, nil, []any{}} {
		if got := Bool(v); got != nil {
			t.Fatalf("Bool(%v) should be nil", v)
		}
	}
}

func TestStringTrimsAndTruncates(t *testing.T) {
	if got := String("  Juan   Pérez \n", 0); got == nil || *got != "Juan Pérez" {
		t.Fatalf("unexpected trim result %v", got)
	}
	if got := String("ñandú", 3); got == nil || *got != "ñan" {
		t.Fatalf("expected rune-safe truncation, got %v", got)
	}
	for _, v := range []any{"null", "N/A", "  ", nil, true} {
		if got := String(v, 10); got != nil {
			t.Fatalf("String(%v) should be nil, got %q", v, *got)
		}
	}
}

func TestStringListSplitsAndCaps(t *testing.T) {
	if got := StringList("Ana; Luis ; ", 10); len(got) != 2 || got[1] != "Luis" {
		t.Fatalf("unexpected split %v", got)
	}
	if got := StringList([]any{"a", "", nil, "b", "c"}, 2); len(got) != 2 || got[1] != "b" {
		t.Fatalf("expected filtered and capped list, got %v", got)
	}
	if got := StringList([]any{nil, ""}, 5); got != nil {
		t.Fatalf("expected nil for empty list, got %v", got)
	}
}

func TestItemsAcceptSpanishKeys(t *testing.T) {
	items := Items([]any{
		map[string]any{"descripcion": "Bombillas LED", "cantidad": "10", "precio": "2,50", "importe": "25,00"},
		map[string]any{},
		"not an object",
	})
	if len(items) != 1 {
		t.Fatalf("expected one usable item, got %d", len(items))
	}
	it := items[0]
	if *it.Description != "Bombillas LED" || *it.Quantity != 10 || *it.UnitPrice != 2.5 || *it.Amount != 25 {
		t.Fatalf("unexpected item %+v", it)
	}
}

func TestCountRejectsFractions(t *testing.T) {
	if Count(2.5) != nil || Count(-1.0) != nil {
		t.Fatalf("expected fractional and negative counts rejected")
	}
	if got := Count("3"); got == nil || *got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestKeywordFoldsAccents(t *testing.T) {
	if got := Keyword(" Único "); got == nil || *got != "unico" {
		t.Fatalf("unexpected keyword %v", got)
	}
}
