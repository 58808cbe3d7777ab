package utils

import "strconv"

const maskVisible = 4

// MaskSecret renders a token for log lines as its first characters and its
// length, e.g. `eyJh…(812)`. Short secrets show nothing but the length.
func MaskSecret(s string) string {
	n := strconv.Itoa(len(s))
	if len(s) <= 2*maskVisible {
		return "…(" + n + ")"
	}
	return s[:maskVisible] + "…(" + n + ")"
}
