package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/importer"
	"github.com/hazyhaar/lavinia/pkg/kit"
	"github.com/mark3labs/mcp-go/server"
)

// SeedStatus reports the outcome of the seeding run.
type SeedStatus interface {
	State() importer.State
	Err() error
}

// Options configure the router. Zero values are valid.
type Options struct {
	Logger *slog.Logger
	Seed   SeedStatus
	// MCP, when set, is served over streamable HTTP at /mcp.
	MCP *server.MCPServer
	// Now is the clock used for the default year of the previous queries.
	Now func() time.Time
}

// NewRouter returns an http.Handler with all election API routes.
func NewRouter(reg *election.Registry, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	h := &handler{
		endpoints: newEndpoints(reg, opts.Logger),
		reg:       reg,
		seed:      opts.Seed,
		now:       opts.Now,
	}

	const v1, v2, v3 = "/api/v1.0.0/", "/api/v2.0.0/", "/api/v3.0.0/"

	mux.HandleFunc("GET "+v1+"{$}", h.handleCountries)
	mux.HandleFunc("GET "+v1+"{country}", h.handleCountry)
	mux.HandleFunc("GET "+v1+"{country}/{electionType}", h.handleElectionType)
	mux.HandleFunc("GET "+v1+"{country}/{electionType}/{year}", h.handleElection)

	for _, prefix := range []string{v2, v3} {
		mux.HandleFunc("GET "+prefix+"votes", h.handleVotes)
		mux.HandleFunc("GET "+prefix+"votes/previous", h.handlePreviousVotes)
		mux.HandleFunc("GET "+prefix+"metrics", h.handleMetrics)
		mux.HandleFunc("GET "+prefix+"metrics/previous", h.handlePreviousMetrics)
	}
	mux.HandleFunc("GET "+v2+"parameters", h.handleParameters(h.parametersV2))
	mux.HandleFunc("GET "+v2+"parameters/previous", h.handlePreviousParameters(h.previousParamsV2))
	mux.HandleFunc("GET "+v3+"parameters", h.handleParameters(h.parametersV3))
	mux.HandleFunc("GET "+v3+"parameters/previous", h.handlePreviousParameters(h.previousParamsV3))
	mux.HandleFunc("GET "+v3+"years", h.handleYears)
	mux.HandleFunc("GET "+v3+"parties", h.handleParties)
	mux.HandleFunc("GET "+v3+"districts", h.handleDistricts)

	mux.HandleFunc("GET /health", h.handleHealth)

	if opts.MCP != nil {
		mux.Handle("/mcp", server.NewStreamableHTTPServer(opts.MCP))
	}

	return cors(requestLog(opts.Logger, mux))
}

type handler struct {
	*endpoints
	reg  *election.Registry
	seed SeedStatus
	now  func() time.Time
}

// --- v3 lookups ---

func (h *handler) handleYears(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.years, nil)
}

func (h *handler) handleParties(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.parties, nil)
}

func (h *handler) handleDistricts(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.districts, &districtsReq{Year: year})
}

// --- votes ---

func (h *handler) handleVotes(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.votes, &votesReq{
		Year:     year,
		Party:    queryString(r, "partyCode", election.All),
		District: queryString(r, "district", election.All),
	})
}

func (h *handler) handlePreviousVotes(w http.ResponseWriter, r *http.Request) {
	req, err := h.parsePrevious(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.previousVotes, req)
}

// --- metrics ---

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.metrics, &metricsReq{
		Year:     year,
		District: queryString(r, "district", election.All),
	})
}

func (h *handler) handlePreviousMetrics(w http.ResponseWriter, r *http.Request) {
	req, err := h.parsePrevious(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.previousMetrics, req)
}

// --- parameters ---

func (h *handler) handleParameters(e kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := queryInt(r, "year", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serve(w, r, e, &parametersReq{Year: year})
	}
}

func (h *handler) handlePreviousParameters(e kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.parsePrevious(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serve(w, r, e, req)
	}
}

// --- v1 hierarchy ---

func (h *handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	deep, err := queryBool(r, "deep")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.countries, &hierarchyReq{Deep: deep})
}

func (h *handler) handleCountry(w http.ResponseWriter, r *http.Request) {
	deep, err := queryBool(r, "deep")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.country, &hierarchyReq{Country: r.PathValue("country"), Deep: deep})
}

func (h *handler) handleElectionType(w http.ResponseWriter, r *http.Request) {
	deep, err := queryBool(r, "deep")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.electionType, &hierarchyReq{
		Country:      r.PathValue("country"),
		ElectionType: r.PathValue("electionType"),
		Deep:         deep,
	})
}

func (h *handler) handleElection(w http.ResponseWriter, r *http.Request) {
	deep, err := queryBool(r, "deep")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	h.serve(w, r, h.election, &hierarchyReq{
		Country:      r.PathValue("country"),
		ElectionType: r.PathValue("electionType"),
		Year:         year,
		Deep:         deep,
	})
}

// --- health ---

type healthResponse struct {
	Status    string          `json:"status"`
	SeedState string          `json:"seed_state,omitempty"`
	SeedError string          `json:"seed_error,omitempty"`
	Counts    election.Counts `json:"counts"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Counts: h.reg.Counts()}
	if h.seed != nil {
		resp.SeedState = h.seed.State().String()
		if err := h.seed.Err(); err != nil {
			resp.Status = "degraded"
			resp.SeedError = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, e kit.Endpoint, req any) {
	resp, err := e(r.Context(), req)
	if err != nil {
		var bad *badRequestError
		switch {
		case errors.As(err, &bad):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, election.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) parsePrevious(r *http.Request) (*previousReq, error) {
	year, err := queryInt(r, "year", h.now().UTC().Year())
	if err != nil {
		return nil, err
	}
	number, err := queryInt(r, "number", election.DefaultPreviousYears)
	if err != nil {
		return nil, err
	}
	return &previousReq{
		Year:     year,
		Number:   number,
		Party:    queryString(r, "partyCode", election.All),
		District: queryString(r, "district", election.All),
	}, nil
}

func queryString(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return def
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(key + " must be a boolean")
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
