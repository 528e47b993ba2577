// Package timing reconstructs per-sample absolute times from noisy on-board
// RTC timestamps: an iterated median-absolute-deviation outlier detector and
// a per-block least-squares fit of RTC time against the 128Hz cycle counter.
package timing

import (
	"sort"
	"time"

	"github.com/kbyando/cinema-pipeline/internal/pool"
)

// madDivisor converts a median absolute deviation into a Gaussian-consistent
// sigma estimate.
const madDivisor = 0.6745

const maxOutlierIterations = 5

// DefaultOutlierTolerance is the default acceptable distance from the
// median, in seconds, before a reduction round is triggered.
const DefaultOutlierTolerance = 3 * 24 * time.Hour

// OutlierIteration records one round of the MAD reduction loop.
type OutlierIteration struct {
	Median    time.Time
	Deviation time.Duration
	Retained  int
}

// DetectOutliers identifies outliers in a sequence of instants using
// iterated median-absolute-deviation rejection. A nil entry marks a missing
// sample and never appears in the result. Reduction repeats, capped at 5
// iterations, while the deviation exceeds tolerance; ties in the reduction
// predicate favor the lower index, the natural consequence of filtering in
// ascending index order. It returns the indices of instants judged outliers
// and a diagnostic trace of each iteration, in place of the original's
// per-iteration print statements.
func DetectOutliers(instants []*time.Time, tolerance time.Duration) ([]int, []OutlierIteration) {
	indices := make([]int, 0, len(instants))
	for i, t := range instants {
		if t != nil {
			indices = append(indices, i)
		}
	}

	var trace []OutlierIteration
	for iter := 0; iter < maxOutlierIterations && len(indices) > 0; iter++ {
		median, deviation := medianMAD(instants, indices)
		trace = append(trace, OutlierIteration{Median: median, Deviation: deviation, Retained: len(indices)})

		if deviation <= tolerance {
			break
		}

		reduced := indices[:0:0]
		for _, i := range indices {
			if absDuration(instants[i].Sub(median)) < deviation {
				reduced = append(reduced, i)
			}
		}
		if len(reduced) == 0 {
			break
		}
		indices = reduced
	}

	retained := make(map[int]bool, len(indices))
	for _, i := range indices {
		retained[i] = true
	}

	var outliers []int
	for i, t := range instants {
		if t != nil && !retained[i] {
			outliers = append(outliers, i)
		}
	}

	return outliers, trace
}

func medianMAD(instants []*time.Time, indices []int) (time.Time, time.Duration) {
	ns, putNS := pool.GetInt64Slice(len(indices))
	defer putNS()
	for i, idx := range indices {
		ns[i] = instants[idx].UnixNano()
	}
	medNS := medianInt64(ns)

	devs, putDevs := pool.GetInt64Slice(len(ns))
	defer putDevs()
	for i, v := range ns {
		devs[i] = absInt64(v - medNS)
	}
	madNS := int64(float64(medianInt64(devs)) / madDivisor)

	return time.Unix(0, medNS).UTC(), time.Duration(madNS)
}

func medianInt64(vals []int64) int64 {
	sorted := append([]int64(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
