package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKernelSize(t *testing.T) {
	cases := map[int]int{2: 3, 3: 3, 4: 5, 5: 5, 8: 9, 15: 15}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKernelSize(in), "kernel %d", in)
	}
}

func TestOperationValidate(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		valid bool
		param string
	}{
		{"mean 3", MeanFilter{KernelSize: 3}, true, ""},
		{"median even rounds up", MedianFilter{KernelSize: 4}, true, ""},
		{"max two rounds to three", MaxFilter{KernelSize: 2}, true, ""},
		{"min one too small", MinFilter{KernelSize: 1}, false, "kernel_size"},
		{"mean too large", MeanFilter{KernelSize: 33}, false, "kernel_size"},
		{"gaussian", GaussianFilter{Sigma: 1.5}, true, ""},
		{"gaussian zero", GaussianFilter{Sigma: 0}, false, "sigma"},
		{"gaussian negative", GaussianFilter{Sigma: -1}, false, "sigma"},
		{"low pass", LowPass{Cutoff: 30}, true, ""},
		{"high pass zero", HighPass{Cutoff: 0}, false, "cutoff"},
		{"erosion 15", Erosion{KernelSize: 15}, true, ""},
		{"dilation 0", Dilation{KernelSize: 0}, false, "kernel_size"},
		{"contrast", ContrastStretch{Min: 10, Max: 200}, true, ""},
		{"contrast inverted", ContrastStretch{Min: 200, Max: 10}, false, "min_val"},
		{"contrast equal", ContrastStretch{Min: 50, Max: 50}, false, "min_val"},
		{"laplacian", Laplacian{}, true, ""},
		{"otsu", OtsuThreshold{}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			assert.Equal(t, tt.param, ve.Parameter)
		})
	}
}

func TestNormalizeOperation(t *testing.T) {
	assert.Equal(t, MedianFilter{KernelSize: 5}, Normalize(MedianFilter{KernelSize: 4}))
	assert.Equal(t, Dilation{KernelSize: 7}, Normalize(Dilation{KernelSize: 6}))
	assert.Equal(t, GaussianFilter{Sigma: 2}, Normalize(GaussianFilter{Sigma: 2}))
	assert.Equal(t, "Mean filter (kernel 5)", MeanFilter{KernelSize: 4}.String())
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "filter", Category(KindSobel))
	assert.Equal(t, "frequency", Category(KindHighPass))
	assert.Equal(t, "morphology", Category(KindErosion))
	assert.Equal(t, "transform", Category(KindContrastStretch))
	assert.Equal(t, "segmentation", Category(KindOtsu))
	assert.Equal(t, Kind("otsu_thresholding"), OtsuThreshold{}.Kind())
}

func TestParseOperation(t *testing.T) {
	d := DefaultParameters()
	tests := []struct {
		spec string
		want Operation
	}{
		{"median:5", MedianFilter{KernelSize: 5}},
		{"mean", MeanFilter{KernelSize: 3}},
		{"MAX:4", MaxFilter{KernelSize: 5}},
		{"min : 7", MinFilter{KernelSize: 7}},
		{"gaussian:1.5", GaussianFilter{Sigma: 1.5}},
		{"gaussian", GaussianFilter{Sigma: 1}},
		{"sobel", Sobel{}},
		{"lowpass:40", LowPass{Cutoff: 40}},
		{"high_pass", HighPass{Cutoff: 30}},
		{"erode:5", Erosion{KernelSize: 5}},
		{"dilation", Dilation{KernelSize: 3}},
		{"contrast:20,220", ContrastStretch{Min: 20, Max: 220}},
		{"contrast_stretch", ContrastStretch{Min: 0, Max: 255}},
		{"equalize", HistogramEqualization{}},
		{"otsu", OtsuThreshold{}},
		{"otsu_thresholding", OtsuThreshold{}},
	}

	for _, tt := range tests {
		got, err := ParseOperation(tt.spec, d)
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}
}

func TestParseOperationErrors(t *testing.T) {
	d := DefaultParameters()
	for _, spec := range []string{
		"sharpen",
		"median:x",
		"median:1",
		"gaussian:-2",
		"contrast:10,300",
		"contrast:200,100",
		"otsu:3",
		"otsu_thresholding:3",
		"median:3,5",
	} {
		_, err := ParseOperation(spec, d)
		assert.Error(t, err, spec)
	}
}

func TestDefaultsValidate(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())

	bad := DefaultParameters()
	bad.Sigma = 0
	assert.Error(t, bad.Validate())
}
