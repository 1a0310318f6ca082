// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"errors"
	"fmt"

	"github.com/agext/levenshtein"
)

var (
	ErrRegionAlreadyExists = errors.New("region already exists")
	ErrRegionNotFound      = errors.New("region not found")
	ErrEmptyRegion         = errors.New("region is empty")
	ErrInvalidName         = errors.New("invalid region name")
)

// maxSuggestDistance bounds how different a registered name may be and still
// be offered as a suggestion.
const maxSuggestDistance = 3

// NotFoundError reports a lookup of an unregistered region. It matches
// ErrRegionNotFound with errors.Is.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("region %q not found (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("region %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRegionNotFound
}

// suggest returns the registered name closest to name, if any is close enough.
func suggest(name string, names []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, candidate := range names {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
