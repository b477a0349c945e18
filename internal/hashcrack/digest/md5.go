package digest

import (
	"crypto/md5"
	"hash"

	"github.com/pkg/errors"
)

// resetDigester keeps one hashing context and resets it between candidates.
type resetDigester struct {
	h hash.Hash
}

func newResetDigester() *resetDigester {
	return &resetDigester{h: md5.New()}
}

func (d *resetDigester) Digest(dst *[Size]byte, data []byte) error {
	d.h.Reset()
	if _, err := d.h.Write(data); err != nil {
		return errors.Wrap(err, "md5 write")
	}
	d.h.Sum(dst[:0])
	return nil
}

// sumDigester hashes every candidate with a one-shot md5.Sum.
type sumDigester struct{}

func newSumDigester() sumDigester {
	return sumDigester{}
}

func (sumDigester) Digest(dst *[Size]byte, data []byte) error {
	*dst = md5.Sum(data)
	return nil
}
