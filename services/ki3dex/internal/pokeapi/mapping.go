package pokeapi

import (
	"strings"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
)

type listResponse struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []ref   `json:"results"`
}

type ref struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type sprites struct {
	FrontDefault *string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault *string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

type pokemonResponse struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Height  *int    `json:"height"`
	Weight  *int    `json:"weight"`
	Sprites sprites `json:"sprites"`
	Types   []struct {
		Slot int `json:"slot"`
		Type ref `json:"type"`
	} `json:"types"`
	Species ref `json:"species"`
}

type speciesResponse struct {
	Color             ref `json:"color"`
	FlavorTextEntries []struct {
		FlavorText string `json:"flavor_text"`
		Language   ref    `json:"language"`
	} `json:"flavor_text_entries"`
}

// resolveSprite prefers the default front sprite, then the official artwork,
// else "".
func resolveSprite(s sprites) string {
	if v := deref(s.FrontDefault); v != "" {
		return v
	}
	return deref(s.Other.OfficialArtwork.FrontDefault)
}

func toEntry(p pokemonResponse) domain.Entry {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		if name := strings.TrimSpace(t.Type.Name); name != "" {
			types = append(types, name)
		}
	}
	return domain.Entry{
		ID:         p.ID,
		Name:       strings.TrimSpace(p.Name),
		Types:      types,
		ImageURL:   resolveSprite(p.Sprites),
		ArtworkURL: deref(p.Sprites.Other.OfficialArtwork.FrontDefault),
		Height:     p.Height,
		Weight:     p.Weight,
		SpeciesURL: strings.TrimSpace(p.Species.URL),
	}
}

// toSpecies picks the first English flavor text and collapses whitespace.
func toSpecies(s speciesResponse) domain.Species {
	out := domain.Species{ColorName: strings.TrimSpace(s.Color.Name)}
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == "en" {
			out.Description = strings.Join(strings.Fields(e.FlavorText), " ")
			break
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
