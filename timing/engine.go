package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/kbyando/cinema-pipeline/errs"
	"github.com/kbyando/cinema-pipeline/internal/pool"
	"github.com/kbyando/cinema-pipeline/telemetry"
	"github.com/kbyando/cinema-pipeline/timestamp"
)

// MAGIC instrument modes, per the CINEMA ICD.
const (
	ModeAttitudeConfig = 0
	ModeAttitude       = 1
	ModeScience        = 2
	ModeGradiometer    = 3
)

const (
	samplesPerPacket = 39

	looseRolloverTolerance = 300.0  // seconds
	tightTolerance         = 0.1    // seconds
	dayRollover            = 86400. // seconds

	defaultFitSlopeMin = 0.95
	defaultFitSlopeMax = 1.10

	defaultBlockThreshold   = 7 // generate_ranges threshold for trusted blocks
	defaultFitOnlyThreshold = 2 // generate_ranges threshold for fit-eligible packets
)

// MagicPacketTiming is the per-packet input the timing engine needs from a
// decoded MAGIC packet: its timestamp and the shared instrument mode/MT flag
// of its 39 samples.
type MagicPacketTiming struct {
	Timestamp telemetry.PacketTimestamp
	Mode      int
	MT        int
}

// BlockFit is one trusted block's least-squares fit of RTC time against the
// 128Hz cycle counter.
type BlockFit struct {
	Start, Finish    int // packet index range [Start,Finish)
	Slope, Intercept float64
	AlgorithmFailed  bool
}

// Result is the outcome of running the timing engine over a MAGIC packet
// stream.
type Result struct {
	Quality     []telemetry.QualityCode // length 2N; final odd entry always 20
	Blocks      []BlockFit
	SampleTimes [][]time.Time // per packet, 39 entries; nil if unresolved
	// Unsupported holds one error per packet index whose mode or MT flag the
	// engine could not interpolate (spec §7 UnsupportedMode): the packet
	// itself survives with SampleTimes[i] left nil, only its absolute time
	// is missing.
	Unsupported map[int]error
}

func nominalIncrement(mode int) float64 {
	switch mode {
	case ModeAttitude:
		return samplesPerPacket * (8.0 / 128.0)
	case ModeScience:
		return samplesPerPacket * (16.0 / 128.0)
	case ModeGradiometer:
		return samplesPerPacket * (8.0 / 128.0)
	default:
		return 0
	}
}

func perSampleCycles(mode int) (int, error) {
	switch mode {
	case ModeAttitude, ModeGradiometer:
		return 8, nil
	case ModeScience:
		return 16, nil
	default:
		return 0, fmt.Errorf("timing: unrecognized magic mode %d: %w", mode, errs.ErrUnsupportedMode)
	}
}

// Run executes the timing engine over a contiguous stream of MAGIC packets:
// per-packet quality tagging, block segmentation, per-block RTC-vs-cycle
// linear fit, and per-sample time interpolation. epoch is the packet
// timestamp's externally-supplied year/month/day (the RTC carries no year).
// opts overrides the block-segmentation and fit-sanity tunables in Config;
// the spec-mandated defaults apply when none are given.
func Run(epoch time.Time, packets []MagicPacketTiming, opts ...Opt) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("timing: %w", err)
	}

	n := len(packets)
	quality := make([]telemetry.QualityCode, 2*n)
	if n > 0 {
		quality[2*n-1] = telemetry.QualityBad // sentinel break at the very last element
	}

	xTime := make([]float64, n)
	yTime := make([]time.Duration, n)

	lastMode := -1
	var previousTime time.Duration
	hasPrevious := false
	rolloverCnt := 0
	cycleSeconds := 0.0

	for i, pkt := range packets {
		ptValid := timestamp.Validate(pkt.Timestamp)
		if !ptValid {
			quality[2*i] = telemetry.QualityIncompleteBadTimestamp
		}

		if lastMode != -1 && lastMode != pkt.Mode {
			if 2*i-1 >= 0 {
				quality[2*i-1] = telemetry.QualityDiscontinuity
			}
			hasPrevious = false
		}
		lastMode = pkt.Mode

		increment := nominalIncrement(pkt.Mode)

		if !ptValid {
			continue
		}

		currentTime := time.Duration(rolloverCnt)*24*time.Hour +
			time.Duration(pkt.Timestamp.Hour)*time.Hour +
			time.Duration(pkt.Timestamp.Minute)*time.Minute +
			time.Duration(pkt.Timestamp.Second)*time.Second +
			time.Duration(pkt.Timestamp.Centisecond)*10*time.Millisecond

		if !hasPrevious {
			yTime[i] = currentTime
			xTime[i] = 0
			previousTime = currentTime
			hasPrevious = true

			continue
		}

		delta := (currentTime - previousTime).Seconds()

		if currentTime <= previousTime {
			if math.Abs(math.Abs(delta)-dayRollover) < looseRolloverTolerance {
				currentTime += 24 * time.Hour
				rolloverCnt++
				delta = (currentTime - previousTime).Seconds()
			} else {
				quality[2*i] = telemetry.QualityIncompleteBadTimestamp
				currentTime = previousTime + time.Duration(increment*float64(time.Second))
				delta = (currentTime - previousTime).Seconds()
			}
		}

		fDiff := delta - increment
		jitter := math.Abs(fDiff-math.Round(fDiff)) < tightTolerance

		fMult := delta / increment
		dropped := math.Abs(fMult-math.Round(fMult)) < tightTolerance

		jittdrop := false
		jittdropMult := 0.0
		for _, pm := range [2]float64{-1, 1} {
			m := (delta + pm) / increment
			if math.Abs(m-math.Round(m)) < tightTolerance {
				jittdrop = true
				jittdropMult = m

				break
			}
		}

		switch {
		case jitter:
			cycleSeconds += increment
		case dropped:
			quality[2*i] = telemetry.QualityImprecise
			cycleSeconds += increment * math.Round(fMult)
		case jittdrop:
			quality[2*i] = telemetry.QualityImprecise
			cycleSeconds += increment * math.Round(jittdropMult)
		default:
			if 2*i-1 >= 0 {
				quality[2*i-1] = telemetry.QualityIncompleteBadTimestamp
			}
			cycleSeconds += increment
		}

		yTime[i] = currentTime
		xTime[i] = cycleSeconds
		previousTime = currentTime
	}

	res := &Result{Quality: quality, SampleTimes: make([][]time.Time, n)}

	for _, block := range generateRanges(quality, telemetry.QualityCode(cfg.BlockThreshold)) {
		fit := fitBlock(block, xTime, yTime, quality, cfg)
		res.Blocks = append(res.Blocks, fit)

		if fit.AlgorithmFailed {
			for i := fit.Start; i < fit.Finish; i++ {
				quality[2*i] = telemetry.QualityAlgorithmFailed
			}
		}

		interpolateBlock(res, epoch, fit, packets, xTime, yTime)
	}

	return res, nil
}

// fitBlock computes the least-squares RTC-vs-cycle fit for one trusted
// block, using only the sub-range of packets whose own quality is ≤2 (i.e.
// excluding byte-shift-affected or repaired entries).
func fitBlock(block [2]int, xTime []float64, yTime []time.Duration, quality []telemetry.QualityCode, cfg Config) BlockFit {
	s, f := block[0], block[1]
	firstTimestamp := yTime[s]

	localQuality := quality[2*s : 2*f]
	fitEligible := generateRanges(localQuality, telemetry.QualityCode(cfg.FitOnlyThreshold))

	count := 0
	for _, sub := range fitEligible {
		count += sub[1] - sub[0]
	}

	xs, putXs := pool.GetFloat64Slice(count)
	defer putXs()
	ys, putYs := pool.GetFloat64Slice(count)
	defer putYs()

	n := 0
	for _, sub := range fitEligible {
		for i := sub[0]; i < sub[1]; i++ {
			xs[n] = xTime[s+i]
			ys[n] = (yTime[s+i] - firstTimestamp).Seconds()
			n++
		}
	}

	m, b := fitLinear(xs, ys)
	failed := m > cfg.FitSlopeMax || m < cfg.FitSlopeMin

	return BlockFit{Start: s, Finish: f, Slope: m, Intercept: b, AlgorithmFailed: failed}
}

// interpolateBlock fills in SampleTimes for every packet in the block using
// its fit and per-sample cadence. Per spec §7, a temperature sample or an
// unrecognized mode fails only that packet's timing: its SampleTimes entry
// is left nil (the packet's decoded payload still reaches the sink) and the
// cause is recorded on res.Unsupported, rather than aborting the block.
func interpolateBlock(res *Result, epoch time.Time, fit BlockFit, packets []MagicPacketTiming, xTime []float64, yTime []time.Duration) {
	firstTimestamp := yTime[fit.Start]

	for i := fit.Start; i < fit.Finish; i++ {
		pkt := packets[i]
		if pkt.MT == 1 {
			res.addUnsupported(i, fmt.Errorf("timing: packet %d is a temperature sample: %w", i, errs.ErrUnsupportedMode))

			continue
		}

		cycles, err := perSampleCycles(pkt.Mode)
		if err != nil {
			res.addUnsupported(i, fmt.Errorf("timing: packet %d: %w", i, err))

			continue
		}

		times := make([]time.Time, samplesPerPacket)
		cyclesElapsed := 0
		for j := 0; j < samplesPerPacket; j++ {
			cycleTime := xTime[i] + float64(cyclesElapsed)/128.0
			dt := fit.Slope*cycleTime + fit.Intercept
			times[j] = epoch.Add(firstTimestamp).Add(time.Duration(dt * float64(time.Second)))
			cyclesElapsed += cycles
		}
		res.SampleTimes[i] = times
	}
}

func (r *Result) addUnsupported(i int, err error) {
	if r.Unsupported == nil {
		r.Unsupported = make(map[int]error)
	}
	r.Unsupported[i] = err
}

// generateRanges partitions quality into maximal runs of even-indexed
// (per-packet) entries all ≤ threshold, breaking the run whenever any entry
// (even or odd) exceeds threshold. Returned ranges are packet-index pairs
// [start,finish).
func generateRanges(quality []telemetry.QualityCode, threshold telemetry.QualityCode) [][2]int {
	var ranges [][2]int
	var series []int

	for i, q := range quality {
		switch {
		case i%2 == 0 && q <= threshold:
			series = append(series, i/2)
		case q > threshold && len(series) > 0:
			ranges = append(ranges, [2]int{series[0], series[len(series)-1] + 1})
			series = nil
		}
	}
	if len(series) > 0 {
		ranges = append(ranges, [2]int{series[0], series[len(series)-1] + 1})
	}

	return ranges
}
