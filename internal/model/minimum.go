package model

// CandidateMinimum is an absorption minimum found on a spectrum.
type CandidateMinimum struct {
	Index         int // position in the spectrum's sorted points
	Wavenumber    float64
	Transmittance float64
	Prominence    float64
}

// AnnotationMode records how an annotation was selected.
type AnnotationMode string

// Annotation modes.
const (
	ModeAuto   AnnotationMode = "auto"
	ModeTarget AnnotationMode = "target"
)

// Annotation is a candidate minimum chosen for display.
type Annotation struct {
	CandidateMinimum
	Mode AnnotationMode
	// Target is the requested wavenumber in target mode.
	Target    float64
	HasTarget bool
}
