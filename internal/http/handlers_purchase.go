package http

import (
	"net/http"

	"cardspend/internal/core"
	"cardspend/internal/services"
)

type createPurchaseRequest struct {
	PaymentMethodID   int64          `json:"payment_method_id"`
	CategoryID        int64          `json:"category_id"`
	PurchaseDate      core.Date      `json:"purchase_date"`
	Description       string         `json:"description"`
	TotalAmount       decimalAmount  `json:"total_amount"`
	Currency          core.Currency  `json:"currency"`
	InstallmentsCount int            `json:"installments_count"`
	OriginalAmount    *decimalAmount `json:"original_amount"`
	OriginalCurrency  core.Currency  `json:"original_currency"`
	ExchangeRateID    *int64         `json:"exchange_rate_id"`
}

type updatePurchaseRequest struct {
	Description  *string        `json:"description"`
	CategoryID   *int64         `json:"category_id"`
	PurchaseDate *core.Date     `json:"purchase_date"`
	TotalAmount  *decimalAmount `json:"total_amount"`
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.InstallmentsCount == 0 {
		req.InstallmentsCount = 1
	}

	p, installments, err := s.svc.Purchases.Create(r.Context(), principalFrom(r.Context()), core.Purchase{
		PaymentMethodID:  req.PaymentMethodID,
		CategoryID:       req.CategoryID,
		Date:             req.PurchaseDate,
		Description:      req.Description,
		Amount:           req.TotalAmount.money(),
		Currency:         req.Currency,
		InstallmentCount: req.InstallmentsCount,
		OriginalAmount:   req.OriginalAmount.moneyPtr(),
		OriginalCurrency: req.OriginalCurrency,
		ExchangeRateID:   req.ExchangeRateID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createPurchaseResponse{
		purchaseResponse: toPurchaseResponse(p),
		Installments:     toInstallmentResponses(installments),
	})
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Purchases.List(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]purchaseResponse, len(list))
	for i, p := range list {
		out[i] = toPurchaseResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.Purchases.Get(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.svc.Purchases.Update(r.Context(), principalFrom(r.Context()), id, services.PurchaseUpdate{
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        req.PurchaseDate,
		Amount:      req.TotalAmount.moneyPtr(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseResponse(p))
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.Purchases.Delete(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletePurchaseResponse{
		DeletedInstallments:   res.Installments,
		DeletedBudgetExpenses: res.BudgetExpenses,
	})
}

func (s *Server) handleListPurchaseInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Purchases.ListInstallments(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentResponses(list))
}
