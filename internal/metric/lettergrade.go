// Package metric implements the derived-metric engine: letter grades, GPA,
// attendance rates and fee balances. Every function is pure and total over
// in-memory snapshots; none touches the store.
package metric

// Coarse letter buckets, the canonical auto-calculated scale.
const (
	LetterA = "A"
	LetterB = "B"
	LetterC = "C"
	LetterD = "D"
	LetterF = "F"
)

// fineLetters is the 12-bucket scale accepted from manual entry forms. It is
// an input-accepted override: auto-calculation always uses the coarse scale.
var fineLetters = map[string]struct{}{
	"A+": {}, "A": {}, "A-": {},
	"B+": {}, "B": {}, "B-": {},
	"C+": {}, "C": {}, "C-": {},
	"D+": {}, "D": {},
	"F": {},
}

// LetterGrade maps a numeric grade in [0,100] onto the coarse scale.
func LetterGrade(value float64) string {
	switch {
	case value >= 90:
		return LetterA
	case value >= 80:
		return LetterB
	case value >= 70:
		return LetterC
	case value >= 60:
		return LetterD
	default:
		return LetterF
	}
}

// LetterRank orders coarse letters A>B>C>D>F for monotonicity checks and
// distribution sorting. Unknown letters rank lowest.
func LetterRank(letter string) int {
	switch letter {
	case LetterA:
		return 5
	case LetterB:
		return 4
	case LetterC:
		return 3
	case LetterD:
		return 2
	case LetterF:
		return 1
	default:
		return 0
	}
}

// IsFineLetter reports whether the supplied label belongs to the accepted
// fine-grained scale.
func IsFineLetter(letter string) bool {
	_, ok := fineLetters[letter]
	return ok
}

// ResolveLetter returns the letter to persist for a grade write: the supplied
// label when it is a valid fine-scale letter, otherwise the coarse mapping of
// the numeric value.
func ResolveLetter(value float64, supplied string) string {
	if IsFineLetter(supplied) {
		return supplied
	}
	return LetterGrade(value)
}
