package digest

import "crypto/md5"

// Size is the length of an MD5 digest in bytes.
const Size = md5.Size

// Digester hashes one candidate at a time. A Digester is owned by a single
// search and is not safe for concurrent use.
type Digester interface {
	Digest(dst *[Size]byte, data []byte) error
}
