// Package bookingcode converts the customer-facing booking codes printed on
// tickets (ex. VOX0000A1B2) into the numeric booking ids wave uses in its urls.
package bookingcode

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	Prefix    = "VOX"
	MinLength = 7
	// Offset is subtracted from the base-36 value of the code, it is how wave
	// numbers its bookings internally.
	Offset = 658
)

const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const codeDigits = 4

var (
	ErrFormat           = errors.New("invalid booking code format")
	ErrInvalidCharacter = errors.New("invalid character in booking code")
	ErrOutOfRange       = errors.New("booking number out of range")
)

// CharacterError is returned when one of the decoded characters is not a
// base-36 digit. Position is the index within the last 4 characters.
type CharacterError struct {
	Char     rune
	Position int
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("%s: %q at position %d", ErrInvalidCharacter.Error(), e.Char, e.Position)
}

func (e *CharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

// Decode returns the booking number of the given booking code, only the last
// 4 characters (case insensitive) contribute to the result.
func Decode(code string) (int, error) {
	runes := []rune(code)
	if !strings.HasPrefix(code, Prefix) || len(runes) < MinLength {
		return 0, fmt.Errorf("%w: %q", ErrFormat, code)
	}

	value := 0
	for i, c := range runes[len(runes)-codeDigits:] {
		c = unicode.ToUpper(c)
		digit := strings.IndexRune(digits, c)
		if digit < 0 {
			return 0, &CharacterError{Char: c, Position: i}
		}
		value = value*36 + digit
	}

	return value - Offset, nil
}

// Encode is the inverse of Decode, it produces the shortest valid code for a
// booking number.
func Encode(number int) (string, error) {
	value := number + Offset
	if value < 0 || value >= 36*36*36*36 {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, number)
	}

	out := make([]byte, codeDigits)
	for i := codeDigits - 1; i >= 0; i-- {
		out[i] = digits[value%36]
		value /= 36
	}
	return Prefix + string(out), nil
}
