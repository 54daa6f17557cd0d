package domain

import "regexp"

// Address is an account address on the tracked chain.
type Address string

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func ValidateAddress(a string) bool {
	return addressRe.MatchString(a)
}
