package perky

import "fmt"

// Hand is one of the two hands a Digit belongs to.
type Hand uint8

const (
	Left Hand = iota
	Right
)

func (h Hand) String() string {
	if h == Left {
		return "L"
	}
	return "R"
}

// Digit identifies one of the ten fingers/thumbs. Ordering matches the
// layout file's row-major digit codes (see digitCode/DigitFromCode).
type Digit uint8

const (
	Lp Digit = iota
	Lr
	Lm
	Li
	Lt
	Rt
	Ri
	Rm
	Rr
	Rp
	numDigits
)

var digitHand = [numDigits]Hand{
	Lp: Left, Lr: Left, Lm: Left, Li: Left, Lt: Left,
	Rt: Right, Ri: Right, Rm: Right, Rr: Right, Rp: Right,
}

// digitFinger is the finger ordinal: pinky=0, ring=1, middle=2, index=3, thumb=4.
var digitFinger = [numDigits]int{
	Lp: 0, Lr: 1, Lm: 2, Li: 3, Lt: 4,
	Rt: 4, Ri: 3, Rm: 2, Rr: 1, Rp: 0,
}

const (
	fingerPinky  = 0
	fingerRing   = 1
	fingerMiddle = 2
	fingerIndex  = 3
	fingerThumb  = 4
)

var digitCode = [numDigits]string{
	Lp: "lp", Lr: "lr", Lm: "lm", Li: "li", Lt: "lt",
	Rt: "rt", Ri: "ri", Rm: "rm", Rr: "rr", Rp: "rp",
}

var codeToDigit = func() map[string]Digit {
	m := make(map[string]Digit, numDigits)
	for d, c := range digitCode {
		m[c] = Digit(d)
	}
	return m
}()

// Hand returns the hand this digit belongs to.
func (d Digit) Hand() Hand { return digitHand[d] }

// Finger returns the finger ordinal (pinky=0 .. thumb=4).
func (d Digit) Finger() int { return digitFinger[d] }

func (d Digit) String() string { return digitCode[d] }

// DigitFromCode parses a layout-file digit code (e.g. "lp", "rt").
func DigitFromCode(code string) (Digit, error) {
	d, ok := codeToDigit[code]
	if !ok {
		return 0, fmt.Errorf("unrecognized digit code %q", code)
	}
	return d, nil
}
