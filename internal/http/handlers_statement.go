package http

import (
	"net/http"

	"cardspend/internal/core"
	"cardspend/internal/services"
)

type createStatementRequest struct {
	CreditCardID int64       `json:"credit_card_id"`
	Period       core.Period `json:"period"`
}

type updateStatementRequest struct {
	StartDate   *core.Date `json:"start_date"`
	ClosingDate *core.Date `json:"closing_date"`
	DueDate     *core.Date `json:"due_date"`
}

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	includeFuture, err := queryBool(r, "include_future", false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Statements.List(r.Context(), principalFrom(r.Context()), includeFuture)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponses(list))
}

func (s *Server) handleListStatementsByCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "creditCardId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Statements.ListByCard(r.Context(), principalFrom(r.Context()), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponses(list))
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := s.svc.Statements.Detail(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDetailResponse(detail))
}

func (s *Server) handleCreateStatement(w http.ResponseWriter, r *http.Request) {
	var req createStatementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.svc.Statements.Create(r.Context(), principalFrom(r.Context()), req.CreditCardID, req.Period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatementResponse(st))
}

func (s *Server) handleUpdateStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateStatementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.svc.Statements.UpdateDates(r.Context(), principalFrom(r.Context()), id, services.StatementDatesUpdate{
		StartDate:   req.StartDate,
		ClosingDate: req.ClosingDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse(st))
}

func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Statements.Delete(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
