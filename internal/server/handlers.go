package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/format"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/record"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	ItemsPerPage int
	Location     *time.Location
	Now          func() time.Time
}

// Handler serves the proposals API. Every request reads the full list from
// the repository and runs it through a fresh view pipeline.
type Handler struct {
	repo         domain.ProposalRepository
	itemsPerPage int
	loc          *time.Location
	now          func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(repo domain.ProposalRepository, opts HandlerOptions) *Handler {
	if repo == nil {
		panic("server.NewHandler: repository dependency cannot be nil")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{repo: repo, itemsPerPage: opts.ItemsPerPage, loc: loc, now: now}
}

// Routes mounts the API under r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/proposals", func(r chi.Router) {
		r.Get("/", h.ListProposals)
		r.Post("/", h.CreateProposal)
		r.Post("/bulk/status", h.BulkStatus)
		r.Post("/bulk/archive", h.BulkArchive)
		r.Put("/{id}", h.UpdateProposal)
		r.Delete("/{id}", h.DeleteProposal)
	})
	r.Get("/summary", h.Summary)
}

type listResponse struct {
	Proposals  []record.Record `json:"proposals"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type bulkArchiveRequest struct {
	IDs      []string `json:"ids"`
	Archived *bool    `json:"archived"`
}

type bulkResponse struct {
	Updated int `json:"updated"`
}

// ListProposals returns one page of the filtered, sorted list.
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	pipeline, err := h.pipelineFromQuery(r.URL.Query())
	if err != nil {
		validationError(w, err.Error())
		return
	}

	proposals, err := h.repo.List(r.Context(), domain.DefaultListOrder)
	if err != nil {
		writeDomainError(w, "list", err)
		return
	}

	result := pipeline.Apply(proposals)
	writeJSON(w, http.StatusOK, listResponse{
		Proposals:  format.Records(result.Rows),
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      len(result.Ordered),
	})
}

// CreateProposal stores a new proposal from a ProposalInput body.
func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var in domain.ProposalInput
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := in.Proposal(h.loc)
	if err != nil {
		validationError(w, err.Error())
		return
	}
	id, err := h.repo.Insert(r.Context(), p)
	if err != nil {
		writeDomainError(w, "create", err)
		return
	}
	logging.Info("server: proposal created", "id", id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// UpdateProposal applies the fields present in a ProposalInput body.
func (h *Handler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in domain.ProposalInput
	if !decodeBody(w, r, &in) {
		return
	}
	patch, err := in.Patch(h.loc)
	if err != nil {
		validationError(w, err.Error())
		return
	}
	if err := h.repo.Update(r.Context(), id, patch); err != nil {
		writeDomainError(w, "update", err)
		return
	}
	logging.Info("server: proposal updated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProposal removes one proposal.
func (h *Handler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "delete", err)
		return
	}
	logging.Info("server: proposal deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// BulkStatus sets one status on every listed proposal.
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var body bulkStatusRequest
	if !decodeBody(w, r, &body) {
		return
	}
	status, err := domain.ParseStatus(body.Status)
	if err != nil {
		validationError(w, err.Error())
		return
	}
	h.bulk(w, r, body.IDs, domain.StatusPatch(status))
}

// BulkArchive archives or restores every listed proposal.
func (h *Handler) BulkArchive(w http.ResponseWriter, r *http.Request) {
	var body bulkArchiveRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Archived == nil {
		validationError(w, "archived is required")
		return
	}
	h.bulk(w, r, body.IDs, domain.ArchivePatch(*body.Archived))
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request, ids []string, patch domain.Patch) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	selection := view.NewSelection()
	selection.Replace(cleaned)
	if selection.IsEmpty() {
		validationError(w, domain.ErrEmptySelection.Error())
		return
	}
	req := view.BulkRequest{IDs: selection.IDs(), Patch: patch}
	if err := h.repo.UpdateMany(r.Context(), req.IDs, req.Patch); err != nil {
		writeDomainError(w, "bulk", err)
		return
	}
	logging.Info("server: bulk update", "count", len(req.IDs))
	writeJSON(w, http.StatusOK, bulkResponse{Updated: len(req.IDs)})
}

// Summary returns the dashboard aggregates of the active proposals.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.repo.List(r.Context(), domain.DefaultListOrder)
	if err != nil {
		writeDomainError(w, "summary", err)
		return
	}
	summary := domain.Summarize(proposals, h.now().In(h.loc))
	writeJSON(w, http.StatusOK, format.NewSummaryDocument(summary))
}

// pipelineFromQuery builds the view state a list request asks for.
func (h *Handler) pipelineFromQuery(q url.Values) (*view.Pipeline, error) {
	sort := domain.DefaultSortOptions()
	if v := q.Get("sort"); v != "" {
		field, err := domain.ParseSortByField(v)
		if err != nil {
			return nil, err
		}
		sort.Field = field
	}
	if v := q.Get("order"); v != "" {
		order, err := domain.ParseSortOrder(strings.ToLower(v))
		if err != nil {
			return nil, err
		}
		sort.Order = order
	}

	p := view.New(h.itemsPerPage, sort)
	if v := q.Get("archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid archived value %q", v)
		}
		p.SetArchived(archived)
	}
	if v := q.Get("period"); v != "" {
		preset, err := domain.ParsePeriodPreset(v)
		if err != nil {
			return nil, err
		}
		if err := p.ApplyPeriod(preset, h.now().In(h.loc)); err != nil {
			return nil, err
		}
	}
	if v := q.Get("from"); v != "" {
		p.SetDateStart(v)
	}
	if v := q.Get("to"); v != "" {
		p.SetDateEnd(v)
	}
	p.SetValueMin(q.Get("min"))
	p.SetValueMax(q.Get("max"))
	if err := p.Filter.Validate(); err != nil {
		return nil, err
	}
	p.SetSearch(q.Get("search"))

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", v)
		}
		p.GoTo(page)
	}
	return p, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		validationError(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
