// Package petango is a client for the PetAndGo (Petango) adoption web
// service:
//
//   - SearchPets queries AdoptableSearch for dogs, cats or all animals
//   - GetPet queries AdoptableDetails for a single animal
//   - XML answers are parsed into Records, open field bags keyed by tag name
//   - Results are cached for 15 minutes; failures are never cached
//   - Errors are typed (*Error) by kind: InvalidArgument, ParseError,
//     NotFound and TransportError
//
// Typical usage:
//
//	client := petango.New(authKey,
//	    petango.WithLogger(petango.NewSimpleLogger()),
//	    petango.WithCache(petango.NewRedisCache(rdb, "")),
//	)
//	dogs, err := client.SearchPets(ctx, "dog", map[string]any{"ageGroup": "Puppy"})
//	if petango.IsNotFound(err) {
//	    // the service had nothing to say
//	}
//
// The client performs no retries. Each call makes at most one request, and
// errors are logged once where they are detected.
package petango
