package cli

import (
	"fmt"
	"strings"
)

type notFoundError struct {
	ref string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("no task matches %q", e.ref)
}

func errNotFound(ref string) error {
	return notFoundError{ref: ref}
}

type ambiguousError struct {
	ref     string
	matches []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("%q matches %d tasks: %s", e.ref, len(e.matches), strings.Join(e.matches, ", "))
}

func errAmbiguous(ref string, matches []string) error {
	return ambiguousError{ref: ref, matches: matches}
}
