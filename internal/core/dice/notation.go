package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSpecs parses dice notation into specs: one token per die group,
// separated by whitespace or commas, e.g. "2d6", "d20 2d10". A missing count
// means a single die.
func ParseSpecs(notation string) ([]Spec, error) {
	fields := strings.FieldsFunc(notation, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, ErrMissingDice
	}

	specs := make([]Spec, 0, len(fields))
	for _, field := range fields {
		spec, err := parseSpec(field)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseSpec(token string) (Spec, error) {
	countPart, sidesPart, found := strings.Cut(strings.ToLower(token), "d")
	if !found || sidesPart == "" {
		return Spec{}, fmt.Errorf("dice token %q: %w", token, ErrInvalidDiceSpec)
	}

	count := 1
	if countPart != "" {
		n, err := strconv.Atoi(countPart)
		if err != nil {
			return Spec{}, fmt.Errorf("dice token %q: %w", token, ErrInvalidDiceSpec)
		}
		count = n
	}
	sides, err := strconv.Atoi(sidesPart)
	if err != nil {
		return Spec{}, fmt.Errorf("dice token %q: %w", token, ErrInvalidDiceSpec)
	}
	if sides <= 0 || count <= 0 {
		return Spec{}, fmt.Errorf("dice token %q: %w", token, ErrInvalidDiceSpec)
	}
	return Spec{Sides: sides, Count: count}, nil
}
