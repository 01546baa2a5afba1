package core

import "fmt"

// Mode selects how context is gathered for a query.
type Mode string

const (
	// ModeNaive matches the question directly against chunk embeddings.
	ModeNaive Mode = "naive"
	// ModeLocal resolves entities named in the question to the chunks that mention them.
	ModeLocal Mode = "local"
	// ModeGlobal searches the concept space for the themes closest to the question.
	ModeGlobal Mode = "global"
	// ModeHybrid merges local and global retrieval.
	ModeHybrid Mode = "hybrid"
)

// DefaultMode is used when a caller does not name one.
const DefaultMode = ModeNaive

var modes = []Mode{ModeNaive, ModeLocal, ModeGlobal, ModeHybrid}

// Modes returns every supported mode in presentation order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// ModeNames returns the supported mode identifiers in presentation order.
func ModeNames() []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return names
}

// ParseMode converts s into a Mode. Matching is exact.
func ParseMode(s string) (Mode, error) {
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

func (m Mode) String() string {
	return string(m)
}
