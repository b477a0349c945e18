package digest

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Type int

const (
	NoopDigestType Type = iota
	ResetDigestType
	SumDigestType
)

const (
	noopDigestName  = "noop"
	resetDigestName = "md5-reset"
	sumDigestName   = "md5-sum"
)

// Factory builds a fresh Digester for every search.
type Factory func() Digester

func NewFactory(digestType Type) Factory {
	return func() Digester {
		return New(digestType)
	}
}

func New(digestType Type) Digester {
	switch digestType {
	case ResetDigestType:
		return newResetDigester()
	case SumDigestType:
		return newSumDigester()
	default:
		return newNoopDigester(log.Logger)
	}
}

func ParseName(name string) Type {
	switch name {
	case resetDigestName:
		return ResetDigestType
	case sumDigestName:
		return SumDigestType
	default:
		return NoopDigestType
	}
}

func (t Type) String() string {
	switch t {
	case ResetDigestType:
		return resetDigestName
	case SumDigestType:
		return sumDigestName
	default:
		return noopDigestName
	}
}

func IsKnownName(name string) bool {
	return name == noopDigestName || name == resetDigestName || name == sumDigestName
}

func DefaultName() string {
	return resetDigestName
}

// Names lists every digest primitive, default first.
func Names() []string {
	return []string{resetDigestName, sumDigestName, noopDigestName}
}

func logger(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().
		Str("domain", "hashcrack").
		Str("type", "digest").
		Str("digest", name).
		Logger()
}
