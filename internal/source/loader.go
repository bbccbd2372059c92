package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Loader resolves origins to datasets.
type Loader interface {
	Load(ctx context.Context, origin string) (*Dataset, error)
}

// FileLoader dispatches on the origin form:
//
//	gauss:players=N,mean=M,stddev=S[,seed=K]  synthetic roster
//	http(s)://...                             remote CSV or JSON
//	*.csv / *.json                            local file
type FileLoader struct {
	// HTTPTimeout bounds remote fetches. Zero means DefaultHTTPTimeout.
	HTTPTimeout time.Duration
	Log         *zap.Logger
}

// DefaultHTTPTimeout bounds remote origin fetches.
const DefaultHTTPTimeout = 10 * time.Second

// NewFileLoader creates a loader with the default timeout.
func NewFileLoader(log *zap.Logger) *FileLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileLoader{HTTPTimeout: DefaultHTTPTimeout, Log: log}
}

// Load resolves the origin. Unrecognised origin forms and empty origins
// fail with ErrUnavailable.
func (l *FileLoader) Load(ctx context.Context, origin string) (*Dataset, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, fmt.Errorf("%w: empty origin", ErrUnavailable)
	}

	start := time.Now()
	var (
		ds  *Dataset
		err error
	)
	switch {
	case strings.HasPrefix(origin, gaussPrefix):
		ds, err = loadGauss(origin)
	case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
		ds, err = l.loadHTTP(ctx, origin)
	case strings.HasSuffix(origin, ".csv"):
		ds, err = loadCSVFile(origin)
	case strings.HasSuffix(origin, ".json"):
		ds, err = loadJSONFile(origin)
	default:
		return nil, fmt.Errorf("%w: unrecognised origin %q", ErrUnavailable, origin)
	}
	if err != nil {
		l.Log.Debug("load failed", zap.String("origin", origin), zap.Error(err))
		return nil, err
	}
	l.Log.Debug("loaded dataset",
		zap.String("origin", origin),
		zap.Int("records", len(ds.Records)),
		zap.Duration("elapsed", time.Since(start)))
	return ds, nil
}
