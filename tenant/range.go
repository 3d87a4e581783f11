package tenant

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/absmach/cartridge"
)

// Wildcard stands for every tenant, alone or as an upper bound ("5-*").
const Wildcard = "*"

var ErrRangeParse = errors.New("malformed tenant range")

// Range is an inclusive interval of tenant IDs.
type Range struct {
	Lower int
	Upper int
	all   bool
}

// All is the range that holds every tenant.
var All = Range{Lower: math.MinInt, Upper: math.MaxInt, all: true}

// ParseRange parses "<lower>-<upper>". An empty string and "*" both yield
// All.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Wildcard {
		return All, nil
	}

	lo, hi, ok := strings.Cut(s, cartridge.TenantRangeDelimiter)
	if !ok {
		return All, fmt.Errorf("%w: %q", ErrRangeParse, s)
	}

	lower, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return All, fmt.Errorf("%w: %q: %w", ErrRangeParse, s, err)
	}

	upper := math.MaxInt
	if hi = strings.TrimSpace(hi); hi != Wildcard {
		if upper, err = strconv.Atoi(hi); err != nil {
			return All, fmt.Errorf("%w: %q: %w", ErrRangeParse, s, err)
		}
	}

	if lower > upper {
		return All, fmt.Errorf("%w: %q: lower bound above upper bound", ErrRangeParse, s)
	}

	return Range{Lower: lower, Upper: upper}, nil
}

func (r Range) IsAll() bool {
	return r.all
}

func (r Range) Contains(tenantID int) bool {
	return r.all || (r.Lower <= tenantID && tenantID <= r.Upper)
}

// Covers reports whether every tenant of o is also in r.
func (r Range) Covers(o Range) bool {
	if r.all {
		return true
	}
	if o.all {
		return false
	}

	return r.Lower <= o.Lower && o.Upper <= r.Upper
}

func (r Range) String() string {
	switch {
	case r.all:
		return Wildcard
	case r.Upper == math.MaxInt:
		return strconv.Itoa(r.Lower) + cartridge.TenantRangeDelimiter + Wildcard
	default:
		return strconv.Itoa(r.Lower) + cartridge.TenantRangeDelimiter + strconv.Itoa(r.Upper)
	}
}
