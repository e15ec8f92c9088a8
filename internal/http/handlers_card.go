package http

import (
	"net/http"

	"cardspend/internal/core"
	"cardspend/internal/services"
)

type createCreditCardRequest struct {
	Name            string         `json:"name"`
	Bank            string         `json:"bank"`
	BillingCloseDay int            `json:"billing_close_day"`
	PaymentDueDay   int            `json:"payment_due_day"`
	CreditLimit     *decimalAmount `json:"credit_limit"`
}

type updateCreditCardRequest struct {
	Name            *string        `json:"name"`
	Bank            *string        `json:"bank"`
	BillingCloseDay *int           `json:"billing_close_day"`
	PaymentDueDay   *int           `json:"payment_due_day"`
	CreditLimit     *decimalAmount `json:"credit_limit"`
}

type createPaymentMethodRequest struct {
	Name string                 `json:"name"`
	Type core.PaymentMethodType `json:"type"`
}

func (s *Server) handleCreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req createCreditCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	card, err := s.svc.Cards.CreateCreditCard(r.Context(), principalFrom(r.Context()), core.CreditCard{
		Name:        req.Name,
		Bank:        req.Bank,
		CloseDay:    req.BillingCloseDay,
		DueDay:      req.PaymentDueDay,
		CreditLimit: req.CreditLimit.moneyPtr(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCreditCardResponse(card))
}

func (s *Server) handleListCreditCards(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Cards.ListCreditCards(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]creditCardResponse, len(list))
	for i, c := range list {
		out[i] = toCreditCardResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateCreditCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	card, err := s.svc.Cards.UpdateCreditCard(r.Context(), principalFrom(r.Context()), id, services.CreditCardUpdate{
		Name:        req.Name,
		Bank:        req.Bank,
		CloseDay:    req.BillingCloseDay,
		DueDay:      req.PaymentDueDay,
		CreditLimit: req.CreditLimit.moneyPtr(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditCardResponse(card))
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req createPaymentMethodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pm, err := s.svc.Cards.CreatePaymentMethod(r.Context(), principalFrom(r.Context()), req.Name, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentMethodResponse{
		ID:        pm.ID,
		Name:      pm.Name,
		Type:      pm.Type,
		CreatedAt: pm.CreatedAt,
	})
}
