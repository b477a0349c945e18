package search

import (
	"encoding/hex"
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/enumerator"
)

// ErrInvalidInput is returned for a malformed target digest or an out of
// range maximum length. It is reported before any hashing starts.
var ErrInvalidInput = stderrors.New("invalid input")

// Target is a parsed MD5 digest.
type Target [digest.Size]byte

// ParseTarget decodes a 32 character hex digest.
func ParseTarget(targetHex string) (Target, error) {
	var target Target
	if len(targetHex) != hex.EncodedLen(digest.Size) {
		return target, errors.Wrapf(ErrInvalidInput,
			"target hash must be %d hex characters, got %d", hex.EncodedLen(digest.Size), len(targetHex))
	}
	if _, err := hex.Decode(target[:], []byte(targetHex)); err != nil {
		return target, errors.Wrapf(ErrInvalidInput, "target hash is not hex: %v", err)
	}
	return target, nil
}

// ValidateMaxLength checks that maxLength is within 1..enumerator.MaxLength.
func ValidateMaxLength(maxLength int) error {
	if maxLength < 1 {
		return errors.Wrapf(ErrInvalidInput, "max length must be positive, got %d", maxLength)
	}
	if maxLength > enumerator.MaxLength {
		return errors.Wrapf(ErrInvalidInput, "max length must not exceed %d, got %d", enumerator.MaxLength, maxLength)
	}
	return nil
}

// Validate checks both search arguments and returns the parsed target.
func Validate(targetHex string, maxLength int) (Target, error) {
	target, err := ParseTarget(targetHex)
	if err != nil {
		return target, err
	}
	return target, ValidateMaxLength(maxLength)
}
