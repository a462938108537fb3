package craigslist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	sqftSuffix = "ft2"
	bedsSuffix = "br"
)

// ErrMalformed marks listing text that could not be parsed into a number.
var ErrMalformed = errors.New("malformed listing field")

// NormalizeHousing splits the housing fragment of a listing ("2br - 900ft2")
// into a bedroom token and a square footage. present is false when the
// listing has no housing span at all.
//
// The decision is positional:
//
//	first token contains "ft2"  -> sqft only, from token 0
//	three or more tokens        -> beds from token 0, sqft from token 2
//	exactly two tokens          -> beds only
//	anything else               -> neither
//
// The bedroom value is left as the raw token with "br" removed.
func NormalizeHousing(text string, present bool) (beds *string, sqft *int, err error) {
	if !present {
		return nil, nil, nil
	}

	tokens := strings.Fields(text)
	switch {
	case len(tokens) > 0 && strings.Contains(tokens[0], sqftSuffix):
		n, err := parseSqft(tokens[0])
		if err != nil {
			return nil, nil, err
		}
		return nil, &n, nil

	case len(tokens) > 2:
		b, ok := bedsToken(text)
		n, err := parseSqft(tokens[2])
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, &n, nil
		}
		return &b, &n, nil

	case len(tokens) == 2:
		b, ok := bedsToken(text)
		if !ok {
			return nil, nil, nil
		}
		return &b, nil, nil
	}

	return nil, nil, nil
}

// bedsToken drops every "br" from the fragment and returns its first token.
func bedsToken(text string) (string, bool) {
	fields := strings.Fields(strings.ReplaceAll(text, bedsSuffix, ""))
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// parseSqft strips the three character unit suffix and parses the rest.
func parseSqft(token string) (int, error) {
	if len(token) < len(sqftSuffix) {
		return 0, fmt.Errorf("%w: sqft %q", ErrMalformed, token)
	}
	n, err := strconv.Atoi(token[:len(token)-len(sqftSuffix)])
	if err != nil {
		return 0, fmt.Errorf("%w: sqft %q", ErrMalformed, token)
	}
	return n, nil
}

var priceCleaner = strings.NewReplacer("$", "", ",", "")

// ParsePrice turns a currency string like "$1,250" into 1250.
func ParsePrice(raw string) (int, error) {
	cleaned := strings.TrimSpace(priceCleaner.Replace(raw))

	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrMalformed, raw)
	}
	return n, nil
}
