package dice

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSpecs(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		want     []Spec
		wantErr  error
	}{
		{
			name:     "count and sides",
			notation: "2d6",
			want:     []Spec{{Sides: 6, Count: 2}},
		},
		{
			name:     "bare die",
			notation: "d20",
			want:     []Spec{{Sides: 20, Count: 1}},
		},
		{
			name:     "uppercase",
			notation: "3D8",
			want:     []Spec{{Sides: 8, Count: 3}},
		},
		{
			name:     "several groups",
			notation: "2d6 d20, 1d100",
			want: []Spec{
				{Sides: 6, Count: 2},
				{Sides: 20, Count: 1},
				{Sides: 100, Count: 1},
			},
		},
		{
			name:     "empty",
			notation: "  ",
			wantErr:  ErrMissingDice,
		},
		{
			name:     "no separator",
			notation: "20",
			wantErr:  ErrInvalidDiceSpec,
		},
		{
			name:     "missing sides",
			notation: "2d",
			wantErr:  ErrInvalidDiceSpec,
		},
		{
			name:     "zero sides",
			notation: "2d0",
			wantErr:  ErrInvalidDiceSpec,
		},
		{
			name:     "negative count",
			notation: "-1d6",
			wantErr:  ErrInvalidDiceSpec,
		},
		{
			name:     "garbage",
			notation: "twodsix",
			wantErr:  ErrInvalidDiceSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpecs(tt.notation)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSpecs(%q) error = %v, want %v", tt.notation, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecs(%q) error = %v", tt.notation, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpecs(%q) = %v, want %v", tt.notation, got, tt.want)
			}
		})
	}
}

func TestParseSpecsRollable(t *testing.T) {
	specs, err := ParseSpecs("2d6 d20")
	if err != nil {
		t.Fatalf("ParseSpecs: %v", err)
	}
	result, err := RollDice(Request{Dice: specs, Seed: 7})
	if err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if len(result.Rolls) != 2 {
		t.Fatalf("got %d rolls, want 2", len(result.Rolls))
	}
	if result.Total < 3 || result.Total > 32 {
		t.Errorf("Total = %d, outside [3, 32]", result.Total)
	}
}
