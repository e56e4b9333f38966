package domain

import "strconv"

// Rate is a playback speed multiplier.
type Rate float32

// DefaultRate is the rate a fresh player starts at.
const DefaultRate Rate = 1.0

// rates is the fixed cycle ChangeSpeed walks through.
var rates = [...]Rate{0.75, 1.0, 1.25, 1.5}

// Rates returns the supported playback rates in cycle order.
func Rates() []Rate {
	return rates[:]
}

// Index returns the position of r in the rate cycle, or -1 if r is not supported.
func (r Rate) Index() int {
	for i, v := range rates {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the supported rates.
func (r Rate) Valid() bool {
	return r.Index() >= 0
}

// Next returns the rate after r, wrapping from the fastest to the slowest.
// An unsupported rate is treated as DefaultRate.
func (r Rate) Next() Rate {
	i := r.Index()
	if i < 0 {
		i = DefaultRate.Index()
	}
	return rates[(i+1)%len(rates)]
}

// Normalize returns r if supported and DefaultRate otherwise.
func (r Rate) Normalize() Rate {
	if r.Valid() {
		return r
	}
	return DefaultRate
}

// String formats the rate as shown to listeners, e.g. "1.25x".
func (r Rate) String() string {
	return strconv.FormatFloat(float64(r), 'f', -1, 32) + "x"
}
