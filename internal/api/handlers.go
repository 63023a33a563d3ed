package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Groups())
}

func (s *Server) handleGroupSubjects(w http.ResponseWriter, r *http.Request) {
	group, ok := s.catalog.Group(r.PathValue("group"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: schedule.ErrUnknownGroup.Error()})
		return
	}
	kind := schedule.KindSyllabus
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := schedule.ParseTestKind(q)
		if err != nil {
			writeBadRequest(w, err.Error(), nil)
			return
		}
		kind = k
	}
	table, ok := s.catalog.Subjects()
	if !ok {
		writeError(w, schedule.ErrCatalogPending)
		return
	}

	out := make([]groupSubjects, 0, len(group.Classes))
	for _, class := range group.Classes {
		out = append(out, groupSubjects{Class: class, Subjects: schedule.OfferedSubjects(table, kind, class)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if !s.decode(w, r, &req) {
		return
	}

	wf, err := s.registry.Create(schedule.Config{
		Kind:      schedule.TestKind(req.TestKind),
		Catalog:   s.catalog,
		Submitter: s.submitter,
		Events:    s.events,
		Edit:      req.Edit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("workflow created", "workflow_id", wf.ID(), "edit", req.Edit != nil)
	writeJSON(w, http.StatusCreated, wf.Snapshot())
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Delete(id) {
		writeError(w, fmt.Errorf("%s: %w", id, errWorkflowNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectGroup(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	var req selectGroupRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := wf.SelectGroup(req.GroupID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleSetKind(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	var req setKindRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := wf.SetTestKind(schedule.TestKind(req.TestKind)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	s.resolveTransition(w, r, wf, wf.ConfirmTransition)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	s.resolveTransition(w, r, wf, wf.CancelTransition)
}

func (s *Server) resolveTransition(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow, resolve func(schedule.GateKind) error) {
	gate := schedule.GateKind(r.PathValue("gate"))
	if gate != schedule.GateGroup && gate != schedule.GateTestKind {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown gate %q", gate)})
		return
	}
	if err := resolve(gate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleSetTag(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	var req setTagRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := wf.SetTag(schedule.TestTag(req.Tag), req.Month); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleToggleClass(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	selected, err := wf.ToggleClass(class)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleClassResponse{Class: class, Selected: selected})
}

func (s *Server) handleSetMaxScore(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	var req setMaxScoreRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := wf.SetMaxScore(class, req.MaxScore); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleClassSubjects(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	subjects, ok := wf.AvailableSubjects(class)
	if !ok {
		writeError(w, schedule.ErrCatalogPending)
		return
	}
	writeJSON(w, http.StatusOK, groupSubjects{Class: class, Subjects: subjects})
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	rowID, err := wf.AddSubjectRow(class)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addRowResponse{Class: class, RowID: rowID})
}

func (s *Server) handleRemoveRow(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	rowID, ok := pathInt(w, r, "row")
	if !ok {
		return
	}
	if err := wf.RemoveSubjectRow(class, rowID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleSetRowField(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	class, ok := pathInt(w, r, "class")
	if !ok {
		return
	}
	rowID, ok := pathInt(w, r, "row")
	if !ok {
		return
	}
	var req setRowFieldRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := wf.SetRowField(class, rowID, schedule.RowField(req.Field), req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	v := wf.Violations()
	if v == nil {
		v = schedule.Violations{}
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	summary, err := wf.Review()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	if err := wf.Revise(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, wf *schedule.Workflow) {
	// The submission outcome is recorded on the workflow even if the
	// client disconnects.
	ctx := context.WithoutCancel(r.Context())
	if err := wf.Submit(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}
