package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/trailcast/core/model"
)

// ErrInvalidObservation wraps coordinate range violations.
var ErrInvalidObservation = errors.New("invalid observation")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the coordinates are within WGS84 bounds.
func Validate(o model.Observation) error {
	err := validatorInstance().Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s=%v (%s %s)", strings.ToLower(fe.Field()), fe.Value(), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidObservation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidObservation, err)
}

// Normalize validates every observation and returns a copy sorted oldest
// first. Equal timestamps keep their input order.
func Normalize(obs []model.Observation) ([]model.Observation, error) {
	for i, o := range obs {
		if err := Validate(o); err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
	}
	out := append([]model.Observation(nil), obs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
