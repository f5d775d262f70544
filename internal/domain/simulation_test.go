package domain

import "testing"

func TestValidRegime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"trauma", "trauma", true},
		{"annealed", "annealed", true},
		{"custom", "custom", true},
		{"empty", "", false},
		{"unknown", "therapy", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRegime(tt.in); got != tt.want {
				t.Errorf("ValidRegime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegimeParameters(t *testing.T) {
	trauma, ok := RegimeTrauma.Parameters(500)
	if !ok {
		t.Fatal("trauma regime should carry canonical parameters")
	}
	if trauma.Steps != 500 || trauma.PriorPrecision != 10000 {
		t.Errorf("trauma parameters = %+v", trauma)
	}

	annealed, ok := RegimeAnnealed.Parameters(500)
	if !ok {
		t.Fatal("annealed regime should carry canonical parameters")
	}
	if annealed.PriorPrecision != 1.0 {
		t.Errorf("annealed parameters = %+v", annealed)
	}

	if _, ok := RegimeCustom.Parameters(500); ok {
		t.Error("custom regime must supply its own parameters")
	}
}
