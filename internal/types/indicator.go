package types

import (
	"strings"

	"github.com/rxtech-lab/argo-threshold/pkg/errors"
)

type IndicatorType string

const (
	IndicatorTypeRSI IndicatorType = "rsi"
)

// AllIndicatorTypes lists every indicator the engine can compute.
var AllIndicatorTypes = []IndicatorType{IndicatorTypeRSI}

// ParseIndicatorType resolves a user supplied indicator name. Matching is case-insensitive.
func ParseIndicatorType(name string) (IndicatorType, error) {
	switch IndicatorType(strings.ToLower(strings.TrimSpace(name))) {
	case IndicatorTypeRSI:
		return IndicatorTypeRSI, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedIndicator, "indicator %q is not supported", name)
	}
}
