package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/DrakeEvans/auction-playground/auction"
	"github.com/DrakeEvans/auction-playground/auctionapi"
	"github.com/DrakeEvans/auction-playground/ledger"
)

type server struct {
	factory  *auction.Factory
	dir      *ledger.Directory
	events   *feed[auction.Event]
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func newServer(factory *auction.Factory, dir *ledger.Directory, events *feed[auction.Event], logger *slog.Logger) *server {
	return &server{
		factory:  factory,
		dir:      dir,
		events:   events,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleEventStream)

	r.Route("/auctions", func(r chi.Router) {
		r.Post("/", s.handleCreateAuction)
		r.Get("/", s.handleListAuctions)
		r.Get("/{id}", s.handleGetAuction)
		r.Get("/{id}/snapshot", s.handleSnapshot)
		r.Get("/{id}/bids/{index}", s.handleGetBid)
		r.Post("/{id}/bids", s.handleBid)
		r.Post("/{id}/end", s.handleEnd)
		r.Post("/{id}/settle", s.handleSettle)
	})

	// Seeding endpoints for the in-memory collaborators.
	r.Post("/tokens/{token}/faucet", s.handleFaucet)
	r.Post("/tokens/{token}/approve", s.handleApprove)
	r.Post("/assets/{registry}/mint", s.handleMint)
	r.Post("/assets/{registry}/approve", s.handleAssetApprove)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req auctionapi.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var a *auction.Auction
	var err error
	if req.Reserve != nil {
		a, err = s.factory.CreateAuctionWithReserve(req.Seller, req.PaymentToken, req.StartingPrice, req.Asset, req.AssetID, *req.Reserve)
	} else {
		a, err = s.factory.CreateAuction(req.Seller, req.PaymentToken, req.StartingPrice, req.Asset, req.AssetID)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, auctionapi.NewAuctionView(a))
}

func (s *server) handleListAuctions(w http.ResponseWriter, _ *http.Request) {
	all := s.factory.List()
	views := make([]auctionapi.AuctionView, len(all))
	for i, a := range all {
		views[i] = auctionapi.NewAuctionView(a)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctionapi.NewAuctionView(a))
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	data, err := auctionapi.NewSnapshot(a).Encode()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) handleGetBid(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	bid, err := a.Bids(index)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctionapi.NewBidView(index, bid))
}

func (s *server) handleBid(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req auctionapi.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.Bid(req.Bidder, req.Amount); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, auctionapi.NewAuctionView(a))
}

func (s *server) handleEnd(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req auctionapi.CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.EndAuction(req.Caller); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctionapi.NewAuctionView(a))
}

func (s *server) handleSettle(w http.ResponseWriter, r *http.Request) {
	a, err := s.factory.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req auctionapi.CallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.Settle(req.Caller); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctionapi.NewAuctionView(a))
}

// handleEventStream upgrades to WebSocket and relays published auction
// events. A read pump watches the connection so a departed client is
// detached as soon as the read fails, not first at the next write.
func (s *server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	sub := s.events.Attach(64)
	defer s.events.Detach(sub)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

type accountAmountRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

type approveRequest struct {
	Owner    string          `json:"owner"`
	Operator string          `json:"operator"`
	Amount   decimal.Decimal `json:"amount"`
}

type assetRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator,omitempty"`
	AssetID  string `json:"asset_id"`
}

func (s *server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	token, err := s.dir.Token(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	var req accountAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := token.Faucet(req.Account, req.Amount); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": token.BalanceOf(req.Account).String()})
}

func (s *server) handleApprove(w http.ResponseWriter, r *http.Request) {
	token, err := s.dir.Token(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := token.IncreaseAllowance(req.Owner, req.Operator, req.Amount); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": token.Allowance(req.Owner, req.Operator).String()})
}

func (s *server) handleMint(w http.ResponseWriter, r *http.Request) {
	registry, err := s.dir.AssetRegistry(chi.URLParam(r, "registry"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := registry.Mint(req.Owner, req.AssetID); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"holder": req.Owner, "asset_id": req.AssetID})
}

func (s *server) handleAssetApprove(w http.ResponseWriter, r *http.Request) {
	registry, err := s.dir.AssetRegistry(chi.URLParam(r, "registry"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Operator == "" {
		req.Operator = s.factory.Identity()
	}
	if err := registry.Approve(req.Owner, req.Operator, req.AssetID); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"operator": req.Operator, "asset_id": req.AssetID})
}

// writeDomainError maps the auction error taxonomy onto HTTP statuses.
func (s *server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auction.ErrValidation), errors.Is(err, ledger.ErrUnknownCollaborator):
		status = http.StatusBadRequest
	case errors.Is(err, auction.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, auction.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, auction.ErrAuctionNotFound), errors.Is(err, auction.ErrBidNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auction.ErrStaleBid),
		errors.Is(err, auction.ErrAuctionClosed),
		errors.Is(err, auction.ErrPrematureEnd),
		errors.Is(err, auction.ErrAlreadyEnded):
		status = http.StatusConflict
	}
	s.writeError(w, status, err)
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, auctionapi.ErrorResponse{Type: "error", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, errors.New("index must be a non-negative integer")
	}
	return index, nil
}
