package calculate

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a series is shorter than an indicator needs
var ErrInsufficientData = errors.New("insufficient data")

func insufficient(indicator string, need, got int) error {
	return fmt.Errorf("%s: need %d prices, got %d: %w", indicator, need, got, ErrInsufficientData)
}
