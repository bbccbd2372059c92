package source

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

const gaussPrefix = "gauss:"

// loadGauss generates a synthetic player roster with skills drawn from a
// normal distribution:
//
//	gauss:players=100,mean=1500,stddev=200,seed=7
//
// players is required; mean defaults to 1500, stddev to 200 and seed to 0.
// The seed makes the origin fully deterministic, which the facade's cache
// and the tests both rely on.
func loadGauss(origin string) (*Dataset, error) {
	players := 0
	mean := 1500.0
	stddev := 200.0
	var seed int64

	args := strings.TrimPrefix(origin, gaussPrefix)
	for _, part := range strings.Split(args, ",") {
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: malformed generator parameter %q", ErrUnavailable, part)
		}
		switch key {
		case "players":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: players must be a positive integer, got %q", ErrUnavailable, value)
			}
			players = n
		case "mean":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad mean %q", ErrUnavailable, value)
			}
			mean = f
		case "stddev":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return nil, fmt.Errorf("%w: bad stddev %q", ErrUnavailable, value)
			}
			stddev = f
		case "seed":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad seed %q", ErrUnavailable, value)
			}
			seed = n
		default:
			return nil, fmt.Errorf("%w: unknown generator parameter %q", ErrUnavailable, key)
		}
	}
	if players == 0 {
		return nil, fmt.Errorf("%w: generator origin needs players=N", ErrUnavailable)
	}

	rng := rand.New(rand.NewSource(seed))
	records := make([]RawRecord, players)
	for i := range records {
		skill := math.Abs(math.Round(rng.NormFloat64()*stddev + mean))
		records[i] = RawRecord{"id": float64(i), "skill": skill}
	}

	return newDataset(origin, []string{"id", "skill"}, records)
}
