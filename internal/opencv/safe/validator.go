package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MaxDimension is the largest width or height accepted for a Mat.
const MaxDimension = 32768

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateGray requires a valid single-channel 8-bit Mat.
func ValidateGray(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("operation %s requires an 8-bit single-channel Mat, got type %d with %d channels",
			operation, int(mat.Type()), mat.Channels())
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

func ValidateCoordinates(row, col, rows, cols int, operation string) error {
	if row < 0 || row >= rows {
		return fmt.Errorf("row %d out of bounds [0, %d) for operation: %s", row, rows, operation)
	}

	if col < 0 || col >= cols {
		return fmt.Errorf("col %d out of bounds [0, %d) for operation: %s", col, cols, operation)
	}

	return nil
}
