package models

import (
	"fmt"
	"strconv"
	"strings"
)

var kindAliases = map[string]Kind{
	"mean":                   KindMean,
	"blur":                   KindMean,
	"median":                 KindMedian,
	"max":                    KindMax,
	"min":                    KindMin,
	"gaussian":               KindGaussian,
	"laplacian":              KindLaplacian,
	"roberts":                KindRoberts,
	"prewitt":                KindPrewitt,
	"sobel":                  KindSobel,
	"low_pass":               KindLowPass,
	"lowpass":                KindLowPass,
	"high_pass":              KindHighPass,
	"highpass":               KindHighPass,
	"erosion":                KindErosion,
	"erode":                  KindErosion,
	"dilation":               KindDilation,
	"dilate":                 KindDilation,
	"contrast_stretch":       KindContrastStretch,
	"contrast":               KindContrastStretch,
	"histogram_equalization": KindHistogramEqualization,
	"equalize":               KindHistogramEqualization,
	"otsu":                   KindOtsu,
	"otsu_thresholding":      KindOtsu,
}

// ParseOperation turns "name[:p1[,p2]]" into an Operation, e.g. "median:5",
// "gaussian:1.5", "contrast:20,220" or "otsu". Missing parameters are taken
// from defaults. The result is normalized and validated.
func ParseOperation(spec string, defaults Defaults) (Operation, error) {
	name, rawArgs, _ := strings.Cut(strings.TrimSpace(spec), ":")
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", name)
	}

	var args []string
	if strings.TrimSpace(rawArgs) != "" {
		for _, a := range strings.Split(rawArgs, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	op, err := buildOperation(kind, args, defaults)
	if err != nil {
		return nil, fmt.Errorf("operation %q: %w", spec, err)
	}

	op = Normalize(op)
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("operation %q: %w", spec, err)
	}
	return op, nil
}

func buildOperation(kind Kind, args []string, d Defaults) (Operation, error) {
	switch kind {
	case KindMean, KindMedian, KindMax, KindMin:
		k, err := intArg(args, 0, "kernel_size", d.KernelSize)
		if err != nil {
			return nil, err
		}
		if err := maxArgs(args, 1); err != nil {
			return nil, err
		}
		switch kind {
		case KindMean:
			return MeanFilter{KernelSize: k}, nil
		case KindMedian:
			return MedianFilter{KernelSize: k}, nil
		case KindMax:
			return MaxFilter{KernelSize: k}, nil
		default:
			return MinFilter{KernelSize: k}, nil
		}
	case KindErosion, KindDilation:
		k, err := intArg(args, 0, "kernel_size", d.MorphKernelSize)
		if err != nil {
			return nil, err
		}
		if err := maxArgs(args, 1); err != nil {
			return nil, err
		}
		if kind == KindErosion {
			return Erosion{KernelSize: k}, nil
		}
		return Dilation{KernelSize: k}, nil
	case KindGaussian:
		sigma := d.Sigma
		if len(args) > 0 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return nil, NewValidationError("sigma", args[0], "not a number")
			}
			sigma = v
		}
		if err := maxArgs(args, 1); err != nil {
			return nil, err
		}
		return GaussianFilter{Sigma: sigma}, nil
	case KindLowPass, KindHighPass:
		c, err := intArg(args, 0, "cutoff", d.Cutoff)
		if err != nil {
			return nil, err
		}
		if err := maxArgs(args, 1); err != nil {
			return nil, err
		}
		if kind == KindLowPass {
			return LowPass{Cutoff: c}, nil
		}
		return HighPass{Cutoff: c}, nil
	case KindContrastStretch:
		lo, err := byteArg(args, 0, "min_val", d.ContrastMin)
		if err != nil {
			return nil, err
		}
		hi, err := byteArg(args, 1, "max_val", d.ContrastMax)
		if err != nil {
			return nil, err
		}
		if err := maxArgs(args, 2); err != nil {
			return nil, err
		}
		return ContrastStretch{Min: lo, Max: hi}, nil
	}

	if err := maxArgs(args, 0); err != nil {
		return nil, err
	}
	switch kind {
	case KindLaplacian:
		return Laplacian{}, nil
	case KindRoberts:
		return Roberts{}, nil
	case KindPrewitt:
		return Prewitt{}, nil
	case KindSobel:
		return Sobel{}, nil
	case KindHistogramEqualization:
		return HistogramEqualization{}, nil
	case KindOtsu:
		return OtsuThreshold{}, nil
	}
	return nil, fmt.Errorf("unsupported operation kind %q", kind)
}

func intArg(args []string, i int, name string, fallback int) (int, error) {
	if i >= len(args) {
		return fallback, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, NewValidationError(name, args[i], "not an integer")
	}
	return v, nil
}

func byteArg(args []string, i int, name string, fallback uint8) (uint8, error) {
	if i >= len(args) {
		return fallback, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil || v < 0 || v > 255 {
		return 0, NewValidationError(name, args[i], "must be an integer between 0 and 255")
	}
	return uint8(v), nil
}

func maxArgs(args []string, n int) error {
	if len(args) > n {
		return fmt.Errorf("expected at most %d parameter(s), got %d", n, len(args))
	}
	return nil
}
