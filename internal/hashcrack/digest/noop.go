package digest

import "github.com/rs/zerolog"

// noopDigester produces an all-zero digest without hashing. It measures the
// enumeration overhead alone; only the all-zero target can match it.
type noopDigester struct{}

func newNoopDigester(l zerolog.Logger) noopDigester {
	nl := logger(l, noopDigestName)
	nl.Debug().Msg("noop digest selected, candidates are not hashed")
	return noopDigester{}
}

func (noopDigester) Digest(dst *[Size]byte, _ []byte) error {
	*dst = [Size]byte{}
	return nil
}
