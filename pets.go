package petango

import (
	"context"
	"errors"
	"strings"
)

const (
	opSearchPets         = "search_pets"
	opSearchPetsUncached = "search_pets_uncached"
	opGetPet             = "get_pet"
)

// SearchCacheKey is the cache key of a species search.
func SearchCacheKey(species string) string {
	return "adoptable_pets_" + species
}

// PetCacheKey is the cache key of a pet's details.
func PetCacheKey(id string) string {
	return "pet_details_" + id
}

// SearchPets lists adoptable animals of species ("all", "dog" or "cat",
// case-insensitive; "" means all). overrides replace the default search
// parameters; speciesID is derived from species unless given. Results are
// cached per species, so overrides do not change the cache key.
func (c *Client) SearchPets(ctx context.Context, species string, overrides map[string]any) ([]*Record, error) {
	if species == "" {
		species = SpeciesAll.String()
	}

	sp, err := c.parseSpecies(species, overrides)
	if err != nil {
		c.observe(opSearchPets, err)
		return nil, err
	}

	pets, err := remember(ctx, c.aside, opSearchPets, SearchCacheKey(species), c.cacheTTL, func(ctx context.Context) ([]*Record, error) {
		return c.searchPets(ctx, species, sp, overrides)
	})
	c.observe(opSearchPets, err)
	return pets, err
}

// SearchPetsUncached is SearchPets without the cache: it always queries the
// service and neither reads nor writes the species entry. Use it when
// overrides narrow the result and other callers share the cache.
func (c *Client) SearchPetsUncached(ctx context.Context, species string, overrides map[string]any) ([]*Record, error) {
	if species == "" {
		species = SpeciesAll.String()
	}

	sp, err := c.parseSpecies(species, overrides)
	if err != nil {
		c.observe(opSearchPetsUncached, err)
		return nil, err
	}

	pets, err := c.searchPets(ctx, species, sp, overrides)
	c.observe(opSearchPetsUncached, err)
	return pets, err
}

func (c *Client) parseSpecies(species string, overrides map[string]any) (Species, error) {
	sp, ok := ParseSpecies(species)
	if !ok {
		c.logger.Error("Invalid species given for "+EndpointAdoptableSearch, "species", species, "queryArgs", overrides)
		return sp, &Error{
			Kind:     ErrorKindInvalidArgument,
			Message:  "invalid species given for " + EndpointAdoptableSearch,
			Endpoint: EndpointAdoptableSearch,
			Species:  species,
		}
	}
	return sp, nil
}

func (c *Client) searchPets(ctx context.Context, species string, sp Species, overrides map[string]any) ([]*Record, error) {
	const endpoint = EndpointAdoptableSearch

	merged := make(map[string]any, len(overrides)+1)
	for k, v := range overrides {
		merged[k] = v
	}
	if _, set := merged["speciesID"]; !set {
		merged["speciesID"] = sp
	}
	args := c.SearchArgs(merged)

	body, err := c.Query(ctx, args, QueryOptions{Endpoint: endpoint})
	if err != nil {
		return nil, withSpecies(err, species)
	}

	if strings.TrimSpace(body) == "" {
		c.logger.Notice("No results from "+endpoint, "species", species, "queryArgs", redact(args))
		return nil, &Error{
			Kind:     ErrorKindNotFound,
			Message:  "no results from " + endpoint,
			Endpoint: endpoint,
			Species:  species,
			Query:    redact(args),
		}
	}

	pets, err := c.parser.ParseMany([]byte(body), SelectorForEndpoint(endpoint))
	if err != nil {
		return nil, withEndpoint(err, endpoint)
	}
	c.metrics.RecordRecordsParsed(endpoint, len(pets))

	return pets, nil
}

// GetPet fetches the details of one animal. A response without a matching
// fragment is NotFound.
func (c *Client) GetPet(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		c.logger.Error("Empty animal ID given for " + EndpointAdoptableDetails)
		err := &Error{Kind: ErrorKindInvalidArgument, Message: "animal ID must not be empty", Endpoint: EndpointAdoptableDetails}
		c.observe(opGetPet, err)
		return nil, err
	}

	pet, err := remember(ctx, c.aside, opGetPet, PetCacheKey(id), c.cacheTTL, func(ctx context.Context) (*Record, error) {
		return c.getPet(ctx, id)
	})
	c.observe(opGetPet, err)
	return pet, err
}

func (c *Client) getPet(ctx context.Context, id string) (*Record, error) {
	const endpoint = EndpointAdoptableDetails

	args := map[string]string{"animalID": id}
	body, err := c.Query(ctx, args, QueryOptions{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}

	notFound := func(msg string) error {
		c.logger.Notice(msg, "endpoint", endpoint, "animalID", id)
		return &Error{Kind: ErrorKindNotFound, Message: msg, Endpoint: endpoint, Query: args}
	}

	if strings.TrimSpace(body) == "" {
		return nil, notFound("no results from " + endpoint)
	}

	pet, ok, err := c.parser.ParseFirst([]byte(body), SelectorForEndpoint(endpoint))
	if err != nil {
		return nil, withEndpoint(err, endpoint)
	}
	if !ok {
		return nil, notFound("no pet details in response")
	}
	c.metrics.RecordRecordsParsed(endpoint, 1)

	return pet, nil
}

// AdoptableToday returns the pets of species that are at the adoption center
// or an event today.
func (c *Client) AdoptableToday(ctx context.Context, species string) ([]*Record, error) {
	return c.filter(ctx, species, (*Record).IsAdoptableToday)
}

// Featured returns the featured pets of species.
func (c *Client) Featured(ctx context.Context, species string) ([]*Record, error) {
	return c.filter(ctx, species, (*Record).IsFeatured)
}

func (c *Client) filter(ctx context.Context, species string, keep func(*Record) bool) ([]*Record, error) {
	pets, err := c.SearchPets(ctx, species, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(pets))
	for _, pet := range pets {
		if keep(pet) {
			out = append(out, pet)
		}
	}
	return out, nil
}

// Invalidate drops cached entries; see SearchCacheKey and PetCacheKey.
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	if c.cache == nil {
		return nil
	}
	var errs []error
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("Cache delete failed", "cacheKey", key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) observe(operation string, err error) {
	if err == nil {
		return
	}
	kind := ErrorKind(err)
	if kind == "" {
		kind = "Unknown"
	}
	c.metrics.RecordError(kind, operation)
}

func withEndpoint(err error, endpoint string) error {
	var e *Error
	if errors.As(err, &e) && e.Endpoint == "" {
		e.Endpoint = endpoint
	}
	return err
}

func withSpecies(err error, species string) error {
	var e *Error
	if errors.As(err, &e) && e.Species == "" {
		e.Species = species
	}
	return err
}
