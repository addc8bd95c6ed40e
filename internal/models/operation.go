package models

import "fmt"

// Kind names an operation in logs, metrics and batch specs.
type Kind string

const (
	KindMean                  Kind = "mean"
	KindMedian                Kind = "median"
	KindMax                   Kind = "max"
	KindMin                   Kind = "min"
	KindGaussian              Kind = "gaussian"
	KindLaplacian             Kind = "laplacian"
	KindRoberts               Kind = "roberts"
	KindPrewitt               Kind = "prewitt"
	KindSobel                 Kind = "sobel"
	KindLowPass               Kind = "low_pass"
	KindHighPass              Kind = "high_pass"
	KindErosion               Kind = "erosion"
	KindDilation              Kind = "dilation"
	KindContrastStretch       Kind = "contrast_stretch"
	KindHistogramEqualization Kind = "histogram_equalization"
	KindOtsu                  Kind = "otsu_thresholding"
)

// Operation is one image edit together with its typed parameters.
// The set of implementations is closed; see the Kind constants.
type Operation interface {
	Kind() Kind
	Validate() error
	String() string
	isOperation()
}

type MeanFilter struct{ KernelSize int }
type MedianFilter struct{ KernelSize int }
type MaxFilter struct{ KernelSize int }
type MinFilter struct{ KernelSize int }
type GaussianFilter struct{ Sigma float64 }
type Laplacian struct{}
type Roberts struct{}
type Prewitt struct{}
type Sobel struct{}

// LowPass keeps spatial frequencies within Cutoff pixels of the spectrum centre.
type LowPass struct{ Cutoff int }

// HighPass suppresses spatial frequencies within Cutoff pixels of the spectrum centre.
type HighPass struct{ Cutoff int }

// Erosion and Dilation use an elliptical structuring element.
type Erosion struct{ KernelSize int }
type Dilation struct{ KernelSize int }

// ContrastStretch clips samples to [Min, Max] and maps that range onto [0, 255].
type ContrastStretch struct{ Min, Max uint8 }
type HistogramEqualization struct{}
type OtsuThreshold struct{}

func (MeanFilter) Kind() Kind            { return KindMean }
func (MedianFilter) Kind() Kind          { return KindMedian }
func (MaxFilter) Kind() Kind             { return KindMax }
func (MinFilter) Kind() Kind             { return KindMin }
func (GaussianFilter) Kind() Kind        { return KindGaussian }
func (Laplacian) Kind() Kind             { return KindLaplacian }
func (Roberts) Kind() Kind               { return KindRoberts }
func (Prewitt) Kind() Kind               { return KindPrewitt }
func (Sobel) Kind() Kind                 { return KindSobel }
func (LowPass) Kind() Kind               { return KindLowPass }
func (HighPass) Kind() Kind              { return KindHighPass }
func (Erosion) Kind() Kind               { return KindErosion }
func (Dilation) Kind() Kind              { return KindDilation }
func (ContrastStretch) Kind() Kind       { return KindContrastStretch }
func (HistogramEqualization) Kind() Kind { return KindHistogramEqualization }
func (OtsuThreshold) Kind() Kind         { return KindOtsu }

func (o MeanFilter) Validate() error     { return validateKernel(o.KernelSize, MaxKernelSize) }
func (o MedianFilter) Validate() error   { return validateKernel(o.KernelSize, MaxKernelSize) }
func (o MaxFilter) Validate() error      { return validateKernel(o.KernelSize, MaxKernelSize) }
func (o MinFilter) Validate() error      { return validateKernel(o.KernelSize, MaxKernelSize) }
func (o GaussianFilter) Validate() error { return validateSigma(o.Sigma) }
func (Laplacian) Validate() error        { return nil }
func (Roberts) Validate() error          { return nil }
func (Prewitt) Validate() error          { return nil }
func (Sobel) Validate() error            { return nil }
func (o LowPass) Validate() error        { return validateCutoff(o.Cutoff) }
func (o HighPass) Validate() error       { return validateCutoff(o.Cutoff) }
func (o Erosion) Validate() error        { return validateKernel(o.KernelSize, MaxKernelSize) }
func (o Dilation) Validate() error       { return validateKernel(o.KernelSize, MaxKernelSize) }

func (o ContrastStretch) Validate() error {
	if o.Min >= o.Max {
		return NewValidationError("min_val", o.Min, fmt.Sprintf("must be below max_val (%d)", o.Max))
	}
	return nil
}

func (HistogramEqualization) Validate() error { return nil }
func (OtsuThreshold) Validate() error         { return nil }

func (o MeanFilter) String() string {
	return fmt.Sprintf("Mean filter (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o MedianFilter) String() string {
	return fmt.Sprintf("Median filter (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o MaxFilter) String() string {
	return fmt.Sprintf("Max filter (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o MinFilter) String() string {
	return fmt.Sprintf("Min filter (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o GaussianFilter) String() string {
	return fmt.Sprintf("Gaussian filter (sigma %.2f)", o.Sigma)
}

func (Laplacian) String() string { return "Laplacian filter" }
func (Roberts) String() string   { return "Roberts filter" }
func (Prewitt) String() string   { return "Prewitt filter" }
func (Sobel) String() string     { return "Sobel filter" }

func (o LowPass) String() string {
	return fmt.Sprintf("Low-pass filter (cutoff %d)", o.Cutoff)
}

func (o HighPass) String() string {
	return fmt.Sprintf("High-pass filter (cutoff %d)", o.Cutoff)
}

func (o Erosion) String() string {
	return fmt.Sprintf("Erosion (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o Dilation) String() string {
	return fmt.Sprintf("Dilation (kernel %d)", NormalizeKernelSize(o.KernelSize))
}

func (o ContrastStretch) String() string {
	return fmt.Sprintf("Contrast stretch (%d-%d)", o.Min, o.Max)
}

func (HistogramEqualization) String() string { return "Histogram equalization" }
func (OtsuThreshold) String() string         { return "Otsu thresholding" }

func (MeanFilter) isOperation()            {}
func (MedianFilter) isOperation()          {}
func (MaxFilter) isOperation()             {}
func (MinFilter) isOperation()             {}
func (GaussianFilter) isOperation()        {}
func (Laplacian) isOperation()             {}
func (Roberts) isOperation()               {}
func (Prewitt) isOperation()               {}
func (Sobel) isOperation()                 {}
func (LowPass) isOperation()               {}
func (HighPass) isOperation()              {}
func (Erosion) isOperation()               {}
func (Dilation) isOperation()              {}
func (ContrastStretch) isOperation()       {}
func (HistogramEqualization) isOperation() {}
func (OtsuThreshold) isOperation()         {}

// Normalize returns op with even kernel sizes rounded up to the next odd
// value. Other operations are returned unchanged.
func Normalize(op Operation) Operation {
	switch o := op.(type) {
	case MeanFilter:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	case MedianFilter:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	case MaxFilter:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	case MinFilter:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	case Erosion:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	case Dilation:
		o.KernelSize = NormalizeKernelSize(o.KernelSize)
		return o
	default:
		return op
	}
}

// Category groups operations the way the UI tabs do.
func Category(kind Kind) string {
	switch kind {
	case KindMean, KindMedian, KindMax, KindMin, KindGaussian,
		KindLaplacian, KindRoberts, KindPrewitt, KindSobel:
		return "filter"
	case KindLowPass, KindHighPass:
		return "frequency"
	case KindErosion, KindDilation:
		return "morphology"
	case KindContrastStretch, KindHistogramEqualization:
		return "transform"
	case KindOtsu:
		return "segmentation"
	default:
		return "unknown"
	}
}
