// Package tokenno generates shop token numbers: one upper case letter
// followed by four digits, A0001 through Z9999.
package tokenno

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	digits    = 4
	maxSerial = 9999
)

var (
	ErrInvalid   = errors.New("invalid token number")
	ErrExhausted = errors.New("token numbers exhausted")
)

// Parse splits a token number into its series letter and serial.
func Parse(s string) (byte, int, error) {
	if len(s) != 1+digits {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	letter := s[0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	serial, err := strconv.Atoi(s[1:])
	if err != nil || serial < 1 || serial > maxSerial {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
	}

	return letter, serial, nil
}

func Format(letter byte, serial int) string {
	return fmt.Sprintf("%c%0*d", letter, digits, serial)
}

func Valid(s string) bool {
	_, _, err := Parse(s)

	return err == nil
}

// Next returns the number after last. An empty last starts at start.
func Next(last, start string) (string, error) {
	if last == "" {
		if _, _, err := Parse(start); err != nil {
			return "", err
		}

		return start, nil
	}

	letter, serial, err := Parse(last)
	if err != nil {
		return "", err
	}

	if serial < maxSerial {
		return Format(letter, serial+1), nil
	}
	if letter == 'Z' {
		return "", ErrExhausted
	}

	return Format(letter+1, 1), nil
}
