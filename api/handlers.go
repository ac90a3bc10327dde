package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"datacore/core/billing"
	"datacore/core/governance"
	"datacore/core/types"
	"datacore/internal/logging"
)

func (s *Server) handleBillingRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BillingRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	period := types.Period(req.Period)
	if period == "" {
		period = types.PeriodOf(time.Now())
	}

	multiplier := decimal.NewFromInt(1)
	if req.Multiplier != "" {
		m, err := decimal.NewFromString(req.Multiplier)
		if err != nil {
			s.writeError(w, "INVALID_MULTIPLIER", err.Error(), http.StatusBadRequest)
			return
		}
		multiplier = m
	}

	var projects []*types.Project
	if req.ProjectID != "" {
		p, err := s.projects.Get(ctx, req.ProjectID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		projects = append(projects, p)
	} else {
		all, err := s.projects.List(ctx)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		projects = all
	}

	engine := billing.NewEngine(s.snapshot, s.billing,
		billing.WithBaselineCPU(s.baselineCPU),
		billing.WithLogger(logging.Named("billing")),
	)
	result, err := engine.Run(ctx, projects, period, multiplier)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Persist the records and the projects' cached costs. The records
	// are authoritative; the cache exists for quick listing.
	for i, rec := range result.Records {
		if err := s.billing.Save(ctx, rec); err != nil {
			s.writeDomainError(w, err)
			return
		}
		if err := s.projects.UpdateCachedCosts(ctx, projects[i]); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	s.writeJSON(w, runResponse(result), http.StatusOK)
}

func (s *Server) handleBillingRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.URL.Query().Get("project")
	period := r.URL.Query().Get("period")

	var (
		records []*types.BillingRecord
		err     error
	)
	switch {
	case projectID != "":
		records, err = s.billing.ListByProject(ctx, projectID)
	case period != "":
		records, err = s.billing.ListByPeriod(ctx, types.Period(period))
	default:
		s.writeError(w, "MISSING_FILTER", "project or period query parameter required", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, records, http.StatusOK)
}

func (s *Server) handleFinances(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := FinancesResponse{GrandTotal: decimal.Zero}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ProjectFinance{
			ProjectID: p.ID,
			Nickname:  p.Nickname,
			Status:    string(p.Status),
			Costs:     p.CachedCosts,
		})
		resp.GrandTotal = resp.GrandTotal.Add(p.CachedCosts.Total)
	}
	s.writeJSON(w, resp, http.StatusOK)
}

func (s *Server) handleAttention(w http.ResponseWriter, r *http.Request) {
	docs, err := s.governance.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	items := governance.AttentionReport(docs, time.Now())
	s.writeJSON(w, AttentionResponse{Items: items}, http.StatusOK)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, projects, http.StatusOK)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, p, http.StatusOK)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p types.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if p.ID == "" {
		s.writeError(w, "MISSING_ID", "project id is required", http.StatusBadRequest)
		return
	}
	if p.Status == "" {
		p.Status = types.StatusOnboarding
	}
	if p.EnvType == "" {
		p.EnvType = types.EnvResearch
	}

	if err := s.projects.Create(r.Context(), &p); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, &p, http.StatusCreated)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.logs.FileTransfers(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, transfers, http.StatusOK)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var t types.FileTransfer
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if t.SourceProject == "" && t.ExternalSource == "" {
		s.writeError(w, "MISSING_SOURCE", "a source project or external source is required", http.StatusBadRequest)
		return
	}
	if t.DataClass == "" {
		t.DataClass = types.DataUndetermined
	}
	if t.ChangeDate.IsZero() {
		t.ChangeDate = time.Now().UTC()
	}

	if err := s.logs.AddFileTransfer(r.Context(), &t); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, &t, http.StatusCreated)
}

func (s *Server) handleListMigrations(w http.ResponseWriter, r *http.Request) {
	migrations, err := s.logs.Migrations(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, migrations, http.StatusOK)
}

func (s *Server) handleCreateMigration(w http.ResponseWriter, r *http.Request) {
	var m types.MigrationLog
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if m.ProjectID == "" || m.NodeDestination == "" {
		s.writeError(w, "MISSING_FIELDS", "project_id and node_destination are required", http.StatusBadRequest)
		return
	}

	if err := s.logs.AddMigration(r.Context(), &m); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, &m, http.StatusCreated)
}
