package petango

import (
	"strconv"
	"strings"
)

// Species selects which animals a search returns.
type Species int

const (
	SpeciesAll Species = 0
	SpeciesDog Species = 1
	SpeciesCat Species = 2
)

var speciesByName = map[string]Species{
	"all": SpeciesAll,
	"dog": SpeciesDog,
	"cat": SpeciesCat,
}

// ParseSpecies looks name up case-insensitively. An empty name means all.
func ParseSpecies(name string) (Species, bool) {
	if name == "" {
		return SpeciesAll, true
	}
	s, ok := speciesByName[strings.ToLower(name)]
	return s, ok
}

// ID is the speciesID value the service expects.
func (s Species) ID() string {
	return strconv.Itoa(int(s))
}

func (s Species) String() string {
	switch s {
	case SpeciesAll:
		return "all"
	case SpeciesDog:
		return "dog"
	case SpeciesCat:
		return "cat"
	default:
		return "Species(" + strconv.Itoa(int(s)) + ")"
	}
}
