package model

import "golang.org/x/text/cases"

// Fold returns the full Unicode case folding of s, so "ß" and "SS" compare
// equal. Every case-insensitive label match goes through it.
// A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}
