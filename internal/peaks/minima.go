package peaks

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Veraticus/ftir-stack/internal/common"
	"github.com/Veraticus/ftir-stack/internal/config"
	"github.com/Veraticus/ftir-stack/internal/model"
	"gonum.org/v1/gonum/floats"
)

// MinimaDetector finds absorption minima as peaks of 1 - transmittance and
// chooses which of them to annotate.
type MinimaDetector struct {
	detector      CandidateDetector
	targets       []float64
	threshold     float64
	peaksPerCurve int
}

// NewMinimaDetector creates a detector from the run configuration. A nil
// detector selects ProminenceDetector.
func NewMinimaDetector(cfg config.Config, detector CandidateDetector) (*MinimaDetector, error) {
	if !(cfg.Prominence > 0) {
		return nil, common.NewConfigError(config.KeyPeakProminence,
			fmt.Sprint(cfg.Prominence), "must be greater than 0")
	}
	if cfg.PeaksPerCurve <= 0 {
		return nil, common.NewConfigError(config.KeyPeaksPerCurve,
			fmt.Sprint(cfg.PeaksPerCurve), "must be a positive integer")
	}
	if detector == nil {
		detector = ProminenceDetector{}
	}

	return &MinimaDetector{
		detector:      detector,
		targets:       append([]float64(nil), cfg.Targets...),
		threshold:     cfg.Prominence,
		peaksPerCurve: cfg.PeaksPerCurve,
	}, nil
}

// Find returns every minimum of spec whose prominence reaches the threshold,
// in point order. Points are expected in display order (descending
// wavenumber).
func (m *MinimaDetector) Find(spec model.Spectrum) []model.CandidateMinimum {
	signal := spec.Transmittances()
	floats.Scale(-1, signal)
	floats.AddConst(1, signal)

	var out []model.CandidateMinimum
	for _, p := range m.detector.DetectCandidates(signal, m.threshold) {
		if p.Prominence < m.threshold || p.Index < 0 || p.Index >= len(spec.Points) {
			continue
		}
		pt := spec.Points[p.Index]
		out = append(out, model.CandidateMinimum{
			Index:         p.Index,
			Wavenumber:    pt.Wavenumber,
			Transmittance: pt.Transmittance,
			Prominence:    p.Prominence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Annotate finds the minima of spec and selects the ones to label: the nearest
// candidate to each target when targets are configured, otherwise the most
// prominent candidates.
func (m *MinimaDetector) Annotate(spec model.Spectrum) ([]model.CandidateMinimum, []model.Annotation) {
	candidates := m.Find(spec)
	if len(m.targets) == 0 {
		return candidates, SelectTop(candidates, m.peaksPerCurve)
	}

	selected := SelectNearest(candidates, m.targets)
	seen := make(map[int]float64, len(selected))
	for _, a := range selected {
		if first, ok := seen[a.Index]; ok {
			slog.Warn("Targets resolved to the same minimum",
				"file", spec.Label,
				"target", first,
				"duplicate_target", a.Target,
				"wavenumber", a.Wavenumber)
			continue
		}
		seen[a.Index] = a.Target
	}
	return candidates, selected
}

// SelectTop returns up to k candidates by descending prominence. Equal
// prominences keep ascending index order.
func SelectTop(candidates []model.CandidateMinimum, k int) []model.Annotation {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	ranked := make([]model.CandidateMinimum, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Prominence != ranked[j].Prominence {
			return ranked[i].Prominence > ranked[j].Prominence
		}
		return ranked[i].Index < ranked[j].Index
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.Annotation, k)
	for i, c := range ranked[:k] {
		out[i] = model.Annotation{CandidateMinimum: c, Mode: model.ModeAuto}
	}
	return out
}

// SelectNearest returns one annotation per target: the candidate with the
// closest wavenumber, preferring the larger prominence and then the lower
// index on ties. Two targets may select the same candidate. No candidates
// means no annotations.
func SelectNearest(candidates []model.CandidateMinimum, targets []float64) []model.Annotation {
	if len(candidates) == 0 {
		return nil
	}

	out := make([]model.Annotation, 0, len(targets))
	for _, target := range targets {
		best := 0
		bestDist := math.Abs(candidates[0].Wavenumber - target)
		for i := 1; i < len(candidates); i++ {
			c := candidates[i]
			d := math.Abs(c.Wavenumber - target)
			switch {
			case d < bestDist:
			case d == bestDist && c.Prominence > candidates[best].Prominence:
			case d == bestDist && c.Prominence == candidates[best].Prominence && c.Index < candidates[best].Index:
			default:
				continue
			}
			best, bestDist = i, d
		}
		out = append(out, model.Annotation{
			CandidateMinimum: candidates[best],
			Mode:             model.ModeTarget,
			Target:           target,
			HasTarget:        true,
		})
	}
	return out
}
