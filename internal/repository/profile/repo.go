// Package profile stores catalog profiles as Valkey hashes and searches them through an FT vector index.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/db"
	"github.com/kailas-cloud/profilematch/internal/domain"
)

// KeyPrefix namespaces profile hashes.
const KeyPrefix = "profilematch:profile:"

// store is the consumer interface for profile hashes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/retrieval.ProfileStore.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ListIDs returns every stored profile id in ascending order.
func (r *Repo) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := strings.TrimPrefix(k, KeyPrefix); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Get returns a profile by id, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.Profile, error) {
	m, err := r.store.HGetAll(ctx, profileKey(id))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.Profile{}, fmt.Errorf("profile %q: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(id, m), nil
}

// List returns every valid profile in id order. Profiles without a name are skipped.
func (r *Repo) List(ctx context.Context) ([]domain.Profile, error) {
	ids, err := r.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		p := parseHashFields(ids[i], m)
		if !p.Valid() {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Upsert writes profiles in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, profiles []domain.Profile) error {
	items := make([]db.HashSetItem, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if !p.Valid() {
			return fmt.Errorf("%w: profile %q requires id and name", domain.ErrInput, p.ID)
		}
		items = append(items, db.HashSetItem{Key: profileKey(p.ID), Fields: buildHashFields(p)})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset profiles: %w", err)
	}
	return nil
}

// Delete removes a profile.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, profileKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", id, err)
	}
	return nil
}

func profileKey(id string) string {
	return KeyPrefix + id
}
