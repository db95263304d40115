package constants

// PercentScale says how raw percent values arrive from the extractor.
type PercentScale string

const (
	// ScaleUnit means values arrive already in [0,1].
	ScaleUnit PercentScale = "0-1"
	// ScaleHundred means values arrive in [0,100] and are divided by 100.
	ScaleHundred PercentScale = "0-100"
)

// ValidScale reports whether s is a supported percent scale.
func ValidScale(s PercentScale) bool {
	return s == ScaleUnit || s == ScaleHundred
}
