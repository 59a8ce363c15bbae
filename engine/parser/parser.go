// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching plus edit-distance
// forgiveness for typos.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nathoo/spiritfield/types"
)

// Canonical verbs understood by the engine.
var verbs = []string{"plant", "harvest", "refine", "flame", "wait", "inventory", "look"}

var verbAliases = map[string]string{
	// Plant
	"p":     "plant",
	"sow":   "plant",
	"seed":  "plant",
	"grow":  "plant",
	"put":   "plant",
	"plant": "plant",

	// Harvest
	"h":       "harvest",
	"reap":    "harvest",
	"gather":  "harvest",
	"pick":    "harvest",
	"collect": "harvest",
	"cut":     "harvest",

	// Refine
	"r":     "refine",
	"brew":  "refine",
	"craft": "refine",
	"smelt": "refine",
	"cook":  "refine",

	// Flame
	"f":      "flame",
	"fire":   "flame",
	"heat":   "flame",
	"toggle": "flame",

	// Miscellaneous
	"z":      "wait",
	"sleep":  "wait",
	"rest":   "wait",
	"i":      "inventory",
	"inv":    "inventory",
	"bag":    "inventory",
	"l":      "look",
	"status": "look",
	"farm":   "look",
}

var cropAliases = map[string]types.Item{
	"fire":       types.FireGrass,
	"fire_grass": types.FireGrass,
	"firegrass":  types.FireGrass,
	"red":        types.FireGrass,
	"wood":       types.WoodGrass,
	"wood_grass": types.WoodGrass,
	"woodgrass":  types.WoodGrass,
	"green":      types.WoodGrass,
}

var flameAliases = map[string]types.FlameLevel{
	"low":    types.FlameLow,
	"gentle": types.FlameLow,
	"mid":    types.FlameMid,
	"medium": types.FlameMid,
	"high":   types.FlameHigh,
	"hot":    types.FlameHigh,
	"max":    types.FlameHigh,
}

// Filler words dropped from arguments.
var fillers = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
	"in": true, "on": true, "at": true, "into": true, "from": true, "to": true,
	"field": true, "plot": true, "slot": true, "seconds": true, "second": true, "s": true,
}

// Parse converts a raw command string into an Intent. Index is -1 when the
// command names no field.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{Index: -1}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	verb := matchVerb(words[0])
	rest := stripFillers(words[1:])

	intent := types.Intent{Verb: verb, Index: -1}
	switch verb {
	case "plant":
		var name []string
		for _, w := range rest {
			if n, err := strconv.Atoi(w); err == nil && intent.Index < 0 {
				intent.Index = n
				continue
			}
			name = append(name, w)
		}
		if len(name) > 0 {
			intent.Object = string(MatchCrop(strings.Join(name, "_")))
		}

	case "harvest":
		for _, w := range rest {
			if w == "all" || w == "everything" {
				intent.All = true
				continue
			}
			if n, err := strconv.Atoi(w); err == nil && intent.Index < 0 {
				intent.Index = n
			}
		}

	case "flame":
		if len(rest) > 0 {
			if lvl, ok := flameAliases[rest[0]]; ok {
				intent.Object = string(lvl)
			} else {
				intent.Object = rest[0]
			}
		}

	case "wait":
		intent.Amount = 1
		if len(rest) > 0 {
			f, err := strconv.ParseFloat(rest[0], 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				// Not a duration; the engine reports it.
				intent.Amount = 0
				intent.Object = rest[0]
				break
			}
			intent.Amount = f
		}

	default:
		intent.Object = strings.Join(rest, " ")
	}

	return intent
}

// MatchCrop resolves a typed crop name, tolerating small typos. Unknown
// names are returned unchanged so the caller can report them.
func MatchCrop(name string) types.Item {
	if c, ok := cropAliases[name]; ok {
		return c
	}
	best, bestDist := "", -1
	for alias := range cropAliases {
		if len(alias) < 4 {
			continue
		}
		d := levenshtein.ComputeDistance(name, alias)
		if d > distanceLimit(len(alias)) {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && alias < best) {
			best, bestDist = alias, d
		}
	}
	if bestDist >= 0 {
		return cropAliases[best]
	}
	return types.Item(name)
}

// matchVerb applies aliases, then falls back to the nearest canonical verb
// within the edit-distance limit. Unmatched words pass through.
func matchVerb(word string) string {
	if alias, ok := verbAliases[word]; ok {
		return alias
	}
	for _, v := range verbs {
		if v == word {
			return v
		}
	}
	if len(word) < 3 {
		return word
	}
	best, bestDist := "", -1
	for _, v := range verbs {
		d := levenshtein.ComputeDistance(word, v)
		if d > distanceLimit(len(v)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = v, d
		}
	}
	if bestDist >= 0 {
		return best
	}
	return word
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// expandMultiWordVerbs handles "set flame", "pick up", "harvest all" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "set", "turn", "change":
		if words[1] == "flame" || words[1] == "fire" || words[1] == "heat" {
			return append([]string{"flame"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"harvest"}, words[2:]...)
		}
	case "start":
		if words[1] == "refining" || words[1] == "refine" {
			return append([]string{"refine"}, words[2:]...)
		}
	case "look":
		if words[1] == "at" || words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	}

	return words
}

// stripFillers removes articles, prepositions and unit words.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimPrefix(w, "#")
		if !fillers[w] && w != "" {
			result = append(result, w)
		}
	}
	return result
}
