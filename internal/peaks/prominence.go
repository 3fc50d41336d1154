// Package peaks finds absorption minima in spectra and picks the ones to annotate.
package peaks

// Peak is a local maximum of a signal.
type Peak struct {
	Index      int
	Prominence float64
}

// CandidateDetector finds peaks whose prominence is at least minProminence.
// Peaks are returned in ascending index order.
type CandidateDetector interface {
	DetectCandidates(signal []float64, minProminence float64) []Peak
}

// ProminenceDetector is the default CandidateDetector. It follows the usual
// find_peaks definition: interior local maxima, with flat tops reported once
// at their middle sample, filtered by topographic prominence.
type ProminenceDetector struct{}

// DetectCandidates implements CandidateDetector.
func (ProminenceDetector) DetectCandidates(signal []float64, minProminence float64) []Peak {
	var peaks []Peak
	for _, idx := range LocalMaxima(signal) {
		if p := Prominence(signal, idx); p >= minProminence {
			peaks = append(peaks, Peak{Index: idx, Prominence: p})
		}
	}
	return peaks
}

// LocalMaxima returns the indices of interior samples that rise strictly above
// their left neighbour and fall strictly to the right. A run of equal samples
// bounded by lower values counts once, at its middle (rounded down).
// Endpoints are never maxima.
func LocalMaxima(x []float64) []int {
	var maxima []int
	last := len(x) - 1

	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			maxima = append(maxima, (i+ahead-1)/2)
			i = ahead
		}
	}
	return maxima
}

// Prominence is how far the signal must descend from x[peak] before it can
// reach a higher sample. Each side is scanned until a strictly higher sample
// or the boundary; the lowest value seen is that side's base and the higher
// of the two bases is the reference level.
func Prominence(x []float64, peak int) float64 {
	height := x[peak]

	leftMin := height
	for i := peak; i >= 0 && x[i] <= height; i-- {
		leftMin = min(leftMin, x[i])
	}

	rightMin := height
	for i := peak; i < len(x) && x[i] <= height; i++ {
		rightMin = min(rightMin, x[i])
	}

	return height - max(leftMin, rightMin)
}
