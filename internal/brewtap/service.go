package brewtap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"scriptkit/internal/logging"
)

// VersionCache stores upstream formula lookups between runs.
type VersionCache interface {
	Get(ctx context.Context, name string, maxAge time.Duration) (Formula, bool, error)
	Put(ctx context.Context, formula Formula) error
}

// Service ties the local brew inventory to upstream version lookups.
type Service struct {
	local  *LocalClient
	remote *RemoteClient
	cache  VersionCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewService constructs a comparator service. cache may be nil to disable
// caching.
func NewService(local *LocalClient, remote *RemoteClient, cache VersionCache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		local:  local,
		remote: remote,
		cache:  cache,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "brewtap"),
	}
}

// CompareTap compares every formula in the tap against upstream.
func (s *Service) CompareTap(ctx context.Context, tap string) ([]Comparison, error) {
	if s == nil || s.local == nil || s.remote == nil {
		return nil, errors.New("brewtap service not initialized")
	}

	names, err := s.local.TapFormulae(ctx, tap)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("tap %s provides no formulae", tap)
	}

	formulae, err := s.local.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	return s.compareAll(ctx, formulae), nil
}

// CompareFormulae compares an explicit list of formulae against upstream.
func (s *Service) CompareFormulae(ctx context.Context, names []string) ([]Comparison, error) {
	if s == nil || s.local == nil || s.remote == nil {
		return nil, errors.New("brewtap service not initialized")
	}
	formulae, err := s.local.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	return s.compareAll(ctx, formulae), nil
}

func (s *Service) compareAll(ctx context.Context, formulae []Formula) []Comparison {
	comparisons := make([]Comparison, 0, len(formulae))
	for _, local := range formulae {
		upstream, err := s.lookupUpstream(ctx, local.Name)
		switch {
		case errors.Is(err, ErrFormulaNotFound):
			comparisons = append(comparisons, Comparison{
				Name:   local.Name,
				Local:  local.VersionString(),
				Status: StatusUnknown,
				Detail: "not published upstream",
			})
			continue
		case err != nil:
			comparisons = append(comparisons, Comparison{
				Name:   local.Name,
				Local:  local.VersionString(),
				Status: StatusUnknown,
				Detail: err.Error(),
			})
			continue
		}
		comparisons = append(comparisons, Compare(local, upstream))
	}
	sort.Slice(comparisons, func(i, j int) bool {
		return strings.ToLower(comparisons[i].Name) < strings.ToLower(comparisons[j].Name)
	})
	return comparisons
}

func (s *Service) lookupUpstream(ctx context.Context, name string) (Formula, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, name, s.ttl)
		if err != nil {
			s.logger.Warn("version cache read failed",
				logging.String("formula", name),
				logging.Error(err),
			)
		} else if ok {
			return cached, nil
		}
	}

	upstream, err := s.remote.Formula(ctx, name)
	if err != nil {
		return Formula{}, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, upstream); err != nil {
			s.logger.Warn("version cache write failed",
				logging.String("formula", name),
				logging.Error(err),
			)
		}
	}
	return upstream, nil
}
