// Package enumerator walks the candidate space of a fixed length as a
// base-62 counter over Alphabet, most significant position first.
package enumerator

// Alphabet is the ordered digit set of the counter.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Size is the radix of the counter.
const Size = len(Alphabet)

// MaxLength is the longest candidate length for which the cumulative
// number of candidates of lengths 1..MaxLength still fits in a uint64.
const MaxLength = 10

// Candidate holds one alphabet index per character position.
type Candidate []int

// Initial returns the all-zero candidate of the given length.
func Initial(length int) Candidate {
	if length < 1 {
		panic("enumerator: length must be positive")
	}
	return make(Candidate, length)
}

// Increment advances c to its successor in place. It returns false when the
// carry runs past the leftmost position, i.e. every candidate of this length
// has been produced; c is all-zero again at that point.
func Increment(c Candidate) bool {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]++
		if c[i] < Size {
			return true
		}
		c[i] = 0
	}
	return false
}

// CombinationCount returns Size^length.
func CombinationCount(length int) uint64 {
	count := uint64(1)
	for i := 0; i < length; i++ {
		count *= uint64(Size)
	}
	return count
}

// TotalCombinations returns the number of candidates of lengths 1..maxLength.
func TotalCombinations(maxLength int) uint64 {
	var total uint64
	for length := 1; length <= maxLength; length++ {
		total += CombinationCount(length)
	}
	return total
}

// Render writes the characters of c into dst, reusing its capacity.
func Render(c Candidate, dst []byte) []byte {
	dst = dst[:0]
	for _, idx := range c {
		dst = append(dst, Alphabet[idx])
	}
	return dst
}

func (c Candidate) String() string {
	return string(Render(c, make([]byte, 0, len(c))))
}
