package bookingcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		code   string
		expect int
	}{
		{code: "VOX0000AAAA", expect: 10*(36*36*36+36*36+36+1) - 658},
		{code: "VOX0000aaaa", expect: 479232},
		{code: "VOX1234", expect: 48702},
		{code: "VOX0000", expect: -658},
		{code: "VOXZZZZ", expect: 35*(36*36*36+36*36+36+1) - 658},
		{code: "VOX00000I2", expect: 18*36 + 2 - 658},
	}

	for _, test := range cases {
		n, err := Decode(test.code)
		require.NoError(t, err, test.code)
		require.Equal(t, test.expect, n, test.code)
	}
}

func TestDecodeOnlyUsesLastFourCharacters(t *testing.T) {
	expected, err := Decode("VOX0000B7K2")
	require.NoError(t, err)

	for _, code := range []string{"VOXB7K2", "VOX9999B7K2", "VOXabcdefgb7k2", "VOX----B7K2"} {
		n, err := Decode(code)
		require.NoError(t, err, code)
		require.Equal(t, expected, n, code)
	}
}

func TestDecodeFormatErrors(t *testing.T) {
	for _, code := range []string{"", "VOX12", "VOX123", "vox1234", "ABC1234", "XVOX1234"} {
		_, err := Decode(code)
		require.ErrorIs(t, err, ErrFormat, code)
	}
}

func TestDecodeCharacterErrors(t *testing.T) {
	cases := []struct {
		code     string
		char     rune
		position int
	}{
		{code: "VOXAA!A", char: '!', position: 2},
		{code: "VOX0000-AAA", char: '-', position: 0},
		{code: "VOX0000AAA ", char: ' ', position: 3},
		{code: "VOX0000AÉAA", char: 'É', position: 1},
		{code: "VOX0000ßAAA", char: 'ß', position: 0},
	}

	for _, test := range cases {
		_, err := Decode(test.code)
		require.ErrorIs(t, err, ErrInvalidCharacter, test.code)
		require.NotErrorIs(t, err, ErrFormat, test.code)

		var charErr *CharacterError
		require.True(t, errors.As(err, &charErr), test.code)
		require.Equal(t, test.char, charErr.Char, test.code)
		require.Equal(t, test.position, charErr.Position, test.code)
	}
}

func TestEncode(t *testing.T) {
	for _, n := range []int{-658, 0, 1, 48702, 479232, 36*36*36*36 - 1 - 658} {
		code, err := Encode(n)
		require.NoError(t, err)
		require.Len(t, code, MinLength)

		decoded, err := Decode(code)
		require.NoError(t, err)
		require.Equal(t, n, decoded)
	}

	_, err := Encode(-659)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = Encode(36*36*36*36 - 658)
	require.ErrorIs(t, err, ErrOutOfRange)
}
