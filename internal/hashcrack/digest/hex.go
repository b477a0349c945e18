package digest

import (
	"crypto/md5"
	"encoding/hex"
)

// Md5Hex returns the lowercase hex MD5 of input.
func Md5Hex(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
