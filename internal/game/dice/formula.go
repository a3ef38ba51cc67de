package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormula indicates a dice formula that cannot be parsed.
var ErrInvalidFormula = errors.New("dice formula is invalid")

// Segment is one kxdN term of a formula.
type Segment struct {
	Count int
	Sides int
}

// Formula is a parsed dice expression: sum(k x dN) + flat modifier,
// segments joined by "+" (e.g. "2d6+3", "1d8+1d6+2").
type Formula struct {
	Segments []Segment
	Modifier int
}

// Result captures one evaluation of a formula.
type Result struct {
	Total  int
	Rolls  []int
	Detail string
}

// Parse parses a dice formula such as "2d6+3".
func Parse(raw string) (Formula, error) {
	compact := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if compact == "" {
		return Formula{}, fmt.Errorf("%w: empty formula", ErrInvalidFormula)
	}

	var formula Formula
	for _, part := range strings.Split(compact, "+") {
		if part == "" {
			return Formula{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidFormula, raw)
		}
		dIdx := strings.Index(part, "d")
		if dIdx == -1 {
			flat, err := strconv.Atoi(part)
			if err != nil {
				return Formula{}, fmt.Errorf("%w: bad modifier %q", ErrInvalidFormula, part)
			}
			formula.Modifier += flat
			continue
		}

		count := 1
		if dIdx > 0 {
			parsed, err := strconv.Atoi(part[:dIdx])
			if err != nil || parsed <= 0 {
				return Formula{}, fmt.Errorf("%w: bad die count %q", ErrInvalidFormula, part)
			}
			count = parsed
		}
		sides, err := strconv.Atoi(part[dIdx+1:])
		if err != nil || sides <= 0 {
			return Formula{}, fmt.Errorf("%w: bad die sides %q", ErrInvalidFormula, part)
		}
		formula.Segments = append(formula.Segments, Segment{Count: count, Sides: sides})
	}

	if len(formula.Segments) == 0 && formula.Modifier == 0 {
		return Formula{}, fmt.Errorf("%w: %q has no dice or modifier", ErrInvalidFormula, raw)
	}
	return formula, nil
}

// Roll evaluates the formula with the provided roller. Dice are rolled in
// segment order, so results are deterministic for a deterministic roller.
func (f Formula) Roll(r Roller) Result {
	var result Result
	var detail strings.Builder

	for i, segment := range f.Segments {
		if i > 0 {
			detail.WriteString("+")
		}
		fmt.Fprintf(&detail, "%dd%d[", segment.Count, segment.Sides)
		for j := 0; j < segment.Count; j++ {
			value := r.Roll(segment.Sides)
			result.Rolls = append(result.Rolls, value)
			result.Total += value
			if j > 0 {
				detail.WriteString(",")
			}
			fmt.Fprintf(&detail, "%d", value)
		}
		detail.WriteString("]")
	}
	if f.Modifier != 0 {
		if len(f.Segments) > 0 {
			fmt.Fprintf(&detail, "%+d", f.Modifier)
		} else {
			fmt.Fprintf(&detail, "%d", f.Modifier)
		}
		result.Total += f.Modifier
	}

	result.Detail = detail.String()
	return result
}

// String renders the formula back to its canonical text form.
func (f Formula) String() string {
	var b strings.Builder
	for i, segment := range f.Segments {
		if i > 0 {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, "%dd%d", segment.Count, segment.Sides)
	}
	if f.Modifier != 0 {
		if len(f.Segments) > 0 {
			fmt.Fprintf(&b, "%+d", f.Modifier)
		} else {
			fmt.Fprintf(&b, "%d", f.Modifier)
		}
	}
	return b.String()
}
