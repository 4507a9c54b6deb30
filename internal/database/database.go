// Package database indexes NEOs and links close approaches to them.
package database

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/filters"
)

// ErrDuplicateDesignation is returned when two NEOs share a designation.
var ErrDuplicateDesignation = errors.New("duplicate neo designation")

// Database holds the linked NEO/approach graph. It is built once by New and
// read-only afterwards.
type Database struct {
	neos          []*domain.NEO
	approaches    []*domain.Approach
	orphans       []*domain.Approach
	byDesignation map[string]*domain.NEO
	byName        map[string]*domain.NEO
}

// New indexes neos by designation and name, then resolves every approach
// against the designation index in a single pass. Approaches that reference
// an unknown designation are kept aside as orphans and logged.
func New(neos []*domain.NEO, approaches []*domain.Approach, logger *slog.Logger) (*Database, error) {
	db := &Database{
		neos:          neos,
		approaches:    make([]*domain.Approach, 0, len(approaches)),
		byDesignation: make(map[string]*domain.NEO, len(neos)),
		byName:        make(map[string]*domain.NEO),
	}

	for _, neo := range neos {
		if _, ok := db.byDesignation[neo.Designation()]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDesignation, neo.Designation())
		}
		db.byDesignation[neo.Designation()] = neo
		if name, ok := neo.Name(); ok {
			if prev, dup := db.byName[name]; dup {
				logger.Warn("duplicate neo name, later designation wins",
					"name", name, "replaced", prev.Designation(), "designation", neo.Designation())
			}
			db.byName[name] = neo
		}
	}

	for _, a := range approaches {
		neo, ok := db.byDesignation[a.Designation()]
		if !ok {
			db.orphans = append(db.orphans, a)
			logger.Debug("approach references unknown neo", "approach", a)
			continue
		}
		if err := neo.Append(a); err != nil {
			return nil, fmt.Errorf("link approach %s at %s: %w", a.Designation(), a.TimeStr(), err)
		}
		db.approaches = append(db.approaches, a)
	}

	if len(db.orphans) > 0 {
		logger.Warn("orphan approaches excluded", "count", len(db.orphans))
	}
	logger.Info("database linked",
		"neos", len(db.neos),
		"approaches", len(db.approaches),
		"orphans", len(db.orphans),
	)

	return db, nil
}

// NEOByDesignation returns the NEO with the given primary designation, or nil.
func (db *Database) NEOByDesignation(designation string) *domain.NEO {
	return db.byDesignation[designation]
}

// NEOByName returns the NEO with the given IAU name, or nil. An empty name
// never matches.
func (db *Database) NEOByName(name string) *domain.NEO {
	if name == "" {
		return nil
	}
	return db.byName[name]
}

// NEOs returns the number of indexed NEOs.
func (db *Database) NEOs() int { return len(db.neos) }

// Approaches returns the linked approaches in source order.
func (db *Database) Approaches() []*domain.Approach {
	out := make([]*domain.Approach, len(db.approaches))
	copy(out, db.approaches)
	return out
}

// Orphans returns the approaches whose designation matched no NEO.
func (db *Database) Orphans() []*domain.Approach {
	out := make([]*domain.Approach, len(db.orphans))
	copy(out, db.orphans)
	return out
}

// Query lazily yields the linked approaches, in source order, that pass
// every filter.
func (db *Database) Query(fs ...filters.Filter) iter.Seq[*domain.Approach] {
	return func(yield func(*domain.Approach) bool) {
		for _, a := range db.approaches {
			if !filters.MatchAll(a, fs) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}
