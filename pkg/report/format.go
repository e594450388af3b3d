package report

import (
	"fmt"
	"math"
	"strings"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", 0.0, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// Unit picks the unit of a state label: V(...) is a voltage, I(...) a current.
func Unit(label string) string {
	switch {
	case strings.HasPrefix(label, "V("):
		return "V"
	case strings.HasPrefix(label, "I("):
		return "A"
	default:
		return ""
	}
}
