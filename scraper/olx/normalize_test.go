package olx

import (
	"errors"
	"testing"
)

func TestGetNumber(t *testing.T) {
	cases := map[string]string{
		"100 000 €":        "100000",
		"54,5 m²":          "54,5",
		"1.250,50 EUR":     "1.250,50",
		"Pret: 85,000 €/m": "85,000",
		"":                 "",
		"fara pret":        "",
	}
	for in, want := range cases {
		if got := GetNumber(in); got != want {
			t.Errorf("GetNumber(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeSurface(t *testing.T) {
	if got := NormalizeSurface("54,5 m²"); got != "54.5" {
		t.Errorf("got %q, want 54.5", got)
	}
	if got := NormalizeSurface("45"); got != "45" {
		t.Errorf("got %q, want 45", got)
	}
}

func TestParsePrice(t *testing.T) {
	v, err := ParsePrice("100 000 €")
	if err != nil {
		t.Fatalf("ParsePrice: %v", err)
	}
	if v != 100000 {
		t.Errorf("got %v, want 100000", v)
	}

	for _, raw := range []string{"", "Pret la cerere", ",", "1.2.3"} {
		_, err := ParsePrice(raw)
		if !errors.Is(err, ErrExtraction) {
			t.Errorf("ParsePrice(%q): got %v, want extraction fault", raw, err)
		}
		var xe *ExtractionError
		if errors.As(err, &xe) && xe.Field != "price" {
			t.Errorf("ParsePrice(%q): field %q, want price", raw, xe.Field)
		}
	}
}

func TestPricePerSqm(t *testing.T) {
	cases := []struct {
		surface, price string
		want           int64
	}{
		{"54,5", "100000", 1835},
		{"50 m²", "1000", 20},
		{"45", "100000", 2222},
		// exact halves go to the even neighbour
		{"2", "5", 2},
		{"2", "7", 4},
		{"4", "10", 2},
		{"4", "14", 4},
	}
	for _, c := range cases {
		got, err := PricePerSqm(c.surface, c.price)
		if err != nil {
			t.Errorf("PricePerSqm(%q, %q): %v", c.surface, c.price, err)
			continue
		}
		if got != c.want {
			t.Errorf("PricePerSqm(%q, %q): got %d, want %d", c.surface, c.price, got, c.want)
		}
	}
}

func TestPricePerSqmFaults(t *testing.T) {
	cases := []struct {
		surface, price, field string
	}{
		{"0", "100000", "surface"},
		{"", "100000", "surface"},
		{",", "100000", "surface"},
		{"mp", "100000", "surface"},
		{"50", "n/a", "price"},
	}
	for _, c := range cases {
		_, err := PricePerSqm(c.surface, c.price)
		if !errors.Is(err, ErrExtraction) {
			t.Errorf("PricePerSqm(%q, %q): got %v, want extraction fault", c.surface, c.price, err)
			continue
		}
		var xe *ExtractionError
		if !errors.As(err, &xe) || xe.Field != c.field {
			t.Errorf("PricePerSqm(%q, %q): got %v, want field %s", c.surface, c.price, err, c.field)
		}
	}
}
