// Package httpapi exposes a petango client over HTTP as JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigwing/petango"
)

// PetService is the part of *petango.Client the router needs.
type PetService interface {
	SearchPets(ctx context.Context, species string, overrides map[string]any) ([]*petango.Record, error)
	SearchPetsUncached(ctx context.Context, species string, overrides map[string]any) ([]*petango.Record, error)
	GetPet(ctx context.Context, id string) (*petango.Record, error)
}

// Options configures NewRouter.
type Options struct {
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// Normalized switches record keys to snake_case.
	Normalized bool
}

// NewRouter serves svc as JSON under /pets, plus /health and, when a
// Gatherer is set, /metrics.
func NewRouter(svc PetService, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	h := &handler{svc: svc, style: petango.CaseOriginal}
	if opts.Normalized {
		h.style = petango.CaseNormalized
	}

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", h.listPets)
		pr.Get("/{petID}", h.getPet)
	})

	return r
}

type handler struct {
	svc   PetService
	style petango.CaseStyle
}

type listResponse struct {
	Species string              `json:"species"`
	Count   int                 `json:"count"`
	Pets    []map[string]string `json:"pets"`
}

// listPets serves GET /pets?species=dog&ageGroup=Puppy. Query parameters
// other than species override the search defaults. The species cache entry
// is shared by every caller, so narrowed searches bypass it.
func (h *handler) listPets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	species := q.Get("species")
	q.Del("species")

	var overrides map[string]any
	for k := range q {
		if overrides == nil {
			overrides = make(map[string]any, len(q))
		}
		overrides[k] = q.Get(k)
	}

	search := h.svc.SearchPets
	if len(overrides) > 0 {
		search = h.svc.SearchPetsUncached
	}

	pets, err := search(r.Context(), species, overrides)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listResponse{Species: species, Count: len(pets), Pets: make([]map[string]string, 0, len(pets))}
	if resp.Species == "" {
		resp.Species = petango.SpeciesAll.String()
	}
	for _, pet := range pets {
		resp.Pets = append(resp.Pets, pet.AsMap(h.style))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getPet(w http.ResponseWriter, r *http.Request) {
	pet, err := h.svc.GetPet(r.Context(), chi.URLParam(r, "petID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pet.AsMap(h.style))
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusFor maps a client error to the HTTP status returned to callers.
func StatusFor(err error) int {
	switch petango.ErrorKind(err) {
	case petango.ErrorKindInvalidArgument:
		return http.StatusBadRequest
	case petango.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorResponse{Error: err.Error(), Kind: petango.ErrorKind(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
