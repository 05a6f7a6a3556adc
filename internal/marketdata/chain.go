package marketdata

import (
	"sort"
	"time"

	"quantdesk/internal/options"
)

// ExpirationFilter selects which expirations of a chain to analyze.
type ExpirationFilter string

// Supported expiration filters.
const (
	ExpirationFirst    ExpirationFilter = "first"
	ExpirationNearTerm ExpirationFilter = "near_term"
	ExpirationAll      ExpirationFilter = "all"
)

// nearTermHorizon is the near-term cutoff in years (90 days).
const nearTermHorizon = 90.0 / 365.0

// IsValid reports whether the filter is one of the supported modes.
func (f ExpirationFilter) IsValid() bool {
	return f == ExpirationFirst || f == ExpirationNearTerm || f == ExpirationAll
}

// CleanChain filters raw provider rows down to solvable quotes: rows with an
// unknown option type, non-finite numbers, non-positive bid, ask or strike,
// volume below minVolume, or an unparseable expiration are dropped. Time to
// expiry is recomputed from now in calendar days, floored at one day, on an
// ACT/365 basis. The result is sorted by (expiration, strike).
func CleanChain(contracts []options.Contract, minVolume int64, now time.Time) []options.Contract {
	cleaned := make([]options.Contract, 0, len(contracts))
	for _, c := range contracts {
		if !c.Type.IsValid() {
			continue
		}
		if !isFinite(c.Bid) || !isFinite(c.Ask) || !isFinite(c.Strike) {
			continue
		}
		if c.Bid <= 0 || c.Ask <= 0 || c.Strike <= 0 {
			continue
		}
		if c.Volume < minVolume {
			continue
		}
		expiry, err := time.Parse(DateLayout, c.Expiration)
		if err != nil {
			continue
		}

		days := int(expiry.Sub(now).Hours() / 24)
		if days < 1 {
			days = 1
		}
		c.TimeToExpiry = float64(days) / 365.0
		cleaned = append(cleaned, c)
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		if cleaned[i].Expiration != cleaned[j].Expiration {
			return cleaned[i].Expiration < cleaned[j].Expiration
		}
		return cleaned[i].Strike < cleaned[j].Strike
	})
	return cleaned
}

// FilterByExpiration restricts a cleaned chain to the requested expirations:
// "first" keeps only the earliest expiration present, "near_term" keeps
// contracts expiring within 90 days, "all" keeps everything. Unknown modes
// behave like "all"; callers validate upstream.
func FilterByExpiration(contracts []options.Contract, filter ExpirationFilter) []options.Contract {
	switch filter {
	case ExpirationFirst:
		if len(contracts) == 0 {
			return contracts
		}
		earliest := contracts[0].Expiration
		for _, c := range contracts[1:] {
			if c.Expiration < earliest {
				earliest = c.Expiration
			}
		}
		kept := make([]options.Contract, 0, len(contracts))
		for _, c := range contracts {
			if c.Expiration == earliest {
				kept = append(kept, c)
			}
		}
		return kept
	case ExpirationNearTerm:
		kept := make([]options.Contract, 0, len(contracts))
		for _, c := range contracts {
			if c.TimeToExpiry <= nearTermHorizon {
				kept = append(kept, c)
			}
		}
		return kept
	default:
		return contracts
	}
}
