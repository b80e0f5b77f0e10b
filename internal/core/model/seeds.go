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

// Package model defines the core data structures for the application. This
// file provides the hardcoded seed corpus used for "few-shot" prompting
// when the example store is still empty. By showing the generative model a
// handful of scored, well-structured prompts, we guide it toward output
// that matches the house style before the learning loop has promoted any
// examples of its own.
//
// The seed set is loaded once at process start and never mutated. Each
// supported genre carries at least three seeds so a cold-start selection
// still produces a usable mix.
package model

import "time"

// seedCreatedAt pins seed timestamps to a fixed instant so selections that
// tie-break on recency behave the same across restarts.
var seedCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// seedCorpus is the full built-in example set, grouped by genre.
var seedCorpus = map[string][]*Example{
	"Electronic Pop": {
		{
			Id:           "seed-epop-001",
			Content:      "[Verse]\nNeon lights paint the night in electric blue\nCity pulse beats fast beneath my worn-out shoes\nChasing dreams through concrete canyons deep and wide\nLost souls dance together in the urban tide",
			Genre:        "Electronic Pop",
			QualityScore: 8.5,
			Tags:         []string{"urban", "energetic", "modern"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-epop-002",
			Content:      "[Chorus]\nStatic hearts in a wireless glow\nEvery signal says stay, every mirror says go\nWe are satellites circling the same old flame\nCalling out in frequencies without a name",
			Genre:        "Electronic Pop",
			QualityScore: 8.2,
			Tags:         []string{"melancholic", "synth", "nocturnal"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-epop-003",
			Content:      "[Verse]\nGlass elevators rise through the morning haze\nCoffee-cup confessions in the subway maze\nA thousand screens are glowing but I look at you\nAnalog emotion cutting digital through",
			Genre:        "Electronic Pop",
			QualityScore: 8.0,
			Tags:         []string{"romantic", "contrast", "city"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
	},
	"Folk": {
		{
			Id:           "seed-folk-001",
			Content:      "[Chorus]\nThunder rolling over distant mountains high\nRaindrops falling like tears from the sky\nNature's symphony in perfect harmony\nEchoes of forever in this melody",
			Genre:        "Folk",
			QualityScore: 8.0,
			Tags:         []string{"nature", "atmospheric", "emotional"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-folk-002",
			Content:      "[Verse]\nOld oak table where my grandmother prayed\nCandle wax and stories that never fade\nThe river knows the names we used to call\nAnd carries them gently past the orchard wall",
			Genre:        "Folk",
			QualityScore: 8.4,
			Tags:         []string{"memory", "family", "pastoral"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-folk-003",
			Content:      "[Bridge]\nPack the wagon light, leave the sorrow here\nDust roads remember every pioneer\nStrings of an old guitar hum the miles along\nHome is just the chorus of a traveling song",
			Genre:        "Folk",
			QualityScore: 8.1,
			Tags:         []string{"journey", "acoustic", "hopeful"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
	},
	"EDM": {
		{
			Id:           "seed-edm-001",
			Content:      "[Bridge]\nBass drops heavy like my heart tonight\nSynths cutting through the darkness bright\nLost in rhythm, found in sound\nWhere broken pieces can be found",
			Genre:        "EDM",
			QualityScore: 9.0,
			Tags:         []string{"intense", "dynamic", "powerful"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-edm-002",
			Content:      "[Drop]\nHands up where the lasers split the smoke\nEvery kick a promise that we never broke\nFour-on-the-floor until the morning light\nOne crowd, one pulse, one endless night",
			Genre:        "EDM",
			QualityScore: 8.6,
			Tags:         []string{"festival", "anthemic", "euphoric"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
		{
			Id:           "seed-edm-003",
			Content:      "[Build]\nRiser climbing like a rocket through the rain\nSnare rolls stacking static in my veins\nHold your breath, the silence is a door\nThen gravity gives up and we hit the floor",
			Genre:        "EDM",
			QualityScore: 8.3,
			Tags:         []string{"tension", "release", "club"},
			Source:       SourceSeed,
			CreatedAt:    seedCreatedAt,
		},
	},
}

// SeedExamples returns the built-in examples for a single genre, or nil if
// the genre has no dedicated seeds. Callers must not mutate the result.
func SeedExamples(genre string) []*Example {
	return seedCorpus[genre]
}

// AllSeedExamples returns every built-in seed example across genres in a
// stable genre order. Used as the last-resort fallback when a selection
// targets a genre the seed corpus does not know.
func AllSeedExamples() []*Example {
	out := make([]*Example, 0, 9)
	for _, genre := range SeedGenres() {
		out = append(out, seedCorpus[genre]...)
	}
	return out
}

// SeedGenres lists the genres that carry built-in seeds, in a fixed order.
func SeedGenres() []string {
	return []string{"EDM", "Electronic Pop", "Folk"}
}
