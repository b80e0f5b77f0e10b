// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines the SelectionService, which picks the few-shot examples
// injected into each generation prompt.
//
// Logic Flow:
//
//  1. **Same-genre block**: The best examples of the requested genre fill
//     roughly 60% of the sample (ceil(n * ratio)), taken in store order so
//     the strongest examples always lead the prompt.
//  2. **Diverse block**: The remainder is drawn at random from the rest of
//     the corpus (other genres first, then any leftover same-genre rows) to
//     keep the prompt from collapsing into a single style.
//  3. **Cold start**: When the corpus is empty the service falls back to the
//     built-in seed examples, preferring seeds of the requested genre.
//
// A selection is a read-only operation; it never mutates the store.
package services

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// SelectionService implements the genre-weighted sampling policy over an
// example store.
type SelectionService struct {
	store          store.ExampleStore
	sameGenreRatio float64 // Fraction of the sample reserved for the requested genre.

	mu  sync.Mutex // Guards rng; rand.Rand is not safe for concurrent use.
	rng *rand.Rand
}

// NewSelectionService is the constructor for SelectionService.
//
// Inputs:
//   - exampleStore: The corpus to sample from.
//   - sameGenreRatio: The fraction of each sample reserved for exact-genre
//     matches (0.6 in the default configuration).
//   - rng: The randomness source for the diverse block. Pass nil for a
//     time-seeded source; tests inject a fixed seed to make the shuffle
//     deterministic.
func NewSelectionService(exampleStore store.ExampleStore, sameGenreRatio float64, rng *rand.Rand) *SelectionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SelectionService{
		store:          exampleStore,
		sameGenreRatio: sameGenreRatio,
		rng:            rng,
	}
}

// Select returns up to n examples for a generation request: the best
// exact-genre matches first, then a shuffled draw from the rest of the
// corpus. On an empty corpus it returns the built-in seeds instead, so
// generation works from the very first request.
//
// Inputs:
//   - ctx: The context for the request.
//   - genre: The genre of the pending generation request.
//   - n: The sample size; fewer examples are returned when the corpus is
//     smaller than n.
//
// Outputs:
//   - []*model.Example: The selected examples, same-genre block first.
//   - error: A *store.StoreError when the corpus cannot be read.
func (s *SelectionService) Select(ctx context.Context, genre string, n int) ([]*model.Example, error) {
	if n <= 0 {
		return []*model.Example{}, nil
	}

	// The same-genre block: ceil(n * ratio), capped at n.
	sameTarget := int(math.Ceil(float64(n) * s.sameGenreRatio))
	if sameTarget > n {
		sameTarget = n
	}
	selected, err := s.store.Query(ctx, genre, 0, sameTarget)
	if err != nil {
		return nil, err
	}

	// The diverse block: everything in the corpus not already selected.
	// Other genres are preferred; leftover same-genre rows only fill in
	// when the rest of the corpus cannot cover the shortfall.
	if len(selected) < n {
		pool, err := s.store.QueryAny(ctx, 0, 0)
		if err != nil {
			return nil, err
		}
		chosen := make(map[string]bool, len(selected))
		for _, ex := range selected {
			chosen[ex.Id] = true
		}
		otherGenres := make([]*model.Example, 0, len(pool))
		sameGenre := make([]*model.Example, 0)
		for _, ex := range pool {
			if chosen[ex.Id] {
				continue
			}
			if ex.Genre == genre {
				sameGenre = append(sameGenre, ex)
			} else {
				otherGenres = append(otherGenres, ex)
			}
		}

		s.mu.Lock()
		s.rng.Shuffle(len(otherGenres), func(i, j int) {
			otherGenres[i], otherGenres[j] = otherGenres[j], otherGenres[i]
		})
		s.mu.Unlock()

		for _, ex := range append(otherGenres, sameGenre...) {
			if len(selected) == n {
				break
			}
			selected = append(selected, ex)
		}
	}

	// Cold start: an empty corpus falls back to the seed examples so the
	// first generation request is still a few-shot prompt.
	if len(selected) == 0 {
		return seedFallback(genre, n), nil
	}
	return selected, nil
}

// seedFallback returns the built-in seeds for a genre, or a capped slice of
// the full seed set when the genre has no seeds of its own.
func seedFallback(genre string, n int) []*model.Example {
	seeds := model.SeedExamples(genre)
	if len(seeds) == 0 {
		seeds = model.AllSeedExamples()
	}
	if len(seeds) > n {
		seeds = seeds[:n]
	}
	return seeds
}
