package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/ezpay/settlement-service/internal/repository"
	"github.com/ezpay/settlement-service/internal/service"
	"github.com/ezpay/settlement-service/internal/similarity"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, codec.ErrDecode):
		http.Error(w, "stored record could not be decoded", http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// Login handles authentication and returns a JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username            string          `json:"username"`
		Password            string          `json:"password"`
		Email               string          `json:"email"`
		TransactionPassword string          `json:"transaction_password"`
		Balance             decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	account, err := h.svc.CreateAccount(r.Context(), req.Username, req.Password, req.Email, req.TransactionPassword, req.Balance)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

// GetAccount returns one account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}
	account, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// UpdateAccount applies a partial update
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}
	var patch models.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	account, err := h.svc.UpdateAccount(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlagTransaction settles one transfer request
func (h *Handler) FlagTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	result, err := h.svc.FlagTransaction(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetTransaction returns one transaction
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}
	txn, err := h.svc.GetTransactionByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// ListTransactions returns all transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// GetFraudTransaction returns one fraud record with its transaction
func (h *Handler) GetFraudTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid fraud record id", http.StatusBadRequest)
		return
	}
	detail, err := h.svc.GetFraudRecordByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// ListFraudTransactions returns all fraud records
func (h *Handler) ListFraudTransactions(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.ListFraudTransactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// Similarity exposes the standalone character-overlap score
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")

	if r.URL.Query().Get("mode") == "decimal" {
		score, err := similarity.ScoreDecimal(a, b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		respondJSON(w, http.StatusOK, map[string]decimal.Decimal{"similarity": score})
		return
	}

	score, err := similarity.Score(a, b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"similarity": score})
}
