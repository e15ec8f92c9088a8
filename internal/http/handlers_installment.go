package http

import (
	"net/http"

	"cardspend/internal/core"
	"cardspend/internal/services"
)

type updateInstallmentRequest struct {
	Amount                      *decimalAmount  `json:"amount"`
	ManuallyAssignedStatementID core.NullableID `json:"manually_assigned_statement_id"`
}

func (s *Server) handleGetInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	inst, err := s.svc.Purchases.GetInstallment(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentResponse(inst))
}

// handleUpdateInstallment applies any subset of amount and manual statement.
// An explicit null statement reverts to the computed assignment.
func (s *Server) handleUpdateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateInstallmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inst, err := s.svc.Installments.UpdateInstallment(r.Context(), principalFrom(r.Context()), id, services.InstallmentUpdate{
		Amount:            req.Amount.moneyPtr(),
		ManualStatementID: req.ManuallyAssignedStatementID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentResponse(inst))
}
