// Package matching selects the best pool for a ride request. The engine is
// pure: it performs no I/O and never re-checks capacity — callers must pass
// pools that are ACTIVE and already filtered for seat/luggage headroom.
package matching

import (
	"sort"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/ride"
)

// Match is the admission decision for one ride against one pool.
type Match struct {
	Pool *pool.Pool

	// AddedDistanceKM is the marginal route distance the ride contributes
	// to the pool. The pool tracks no geometric route endpoint, so the
	// ride's own direct distance is used as a conservative approximation.
	AddedDistanceKM float64

	// DetourPercent = (routeDistance + added - direct) / direct * 100.
	DetourPercent float64
}

// FindBestPool returns the capacity-eligible pool with the minimal detour
// within the ride's tolerance, or false when no candidate is acceptable.
//
// Candidates are evaluated in ascending pool-id order, so the result never
// depends on the caller's iteration order and ties go to the lowest id.
func FindBestPool(req *ride.Request, candidates []*pool.Pool) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}

	ordered := make([]*pool.Pool, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	direct := req.DirectDistanceKM()

	var (
		best  Match
		found bool
	)
	for _, cand := range ordered {
		m := evaluate(cand, direct)
		if m.DetourPercent > req.DetourTolerancePercent {
			continue
		}
		if !found || m.DetourPercent < best.DetourPercent {
			best = m
			found = true
		}
	}
	return best, found
}

// evaluate computes the detour the ride would incur by joining cand.
func evaluate(cand *pool.Pool, directKM float64) Match {
	added := directKM
	if directKM == 0 {
		// a zero-distance ride adds nothing to the route and is always
		// within tolerance; avoid dividing by zero below
		return Match{Pool: cand, AddedDistanceKM: 0, DetourPercent: 0}
	}
	newTotal := cand.RouteDistanceKM + added
	detour := (newTotal - directKM) / directKM * 100
	return Match{Pool: cand, AddedDistanceKM: added, DetourPercent: detour}
}
