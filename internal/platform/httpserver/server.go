package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	accesscontrol "pollux/contexts/identity-access/access-control"
	accesserrors "pollux/contexts/identity-access/access-control/domain/errors"
	accesshttp "pollux/contexts/identity-access/access-control/transport/http"
	registrationservice "pollux/contexts/identity-access/registration-service"
	registryerrors "pollux/contexts/identity-access/registration-service/domain/errors"
	registryhttp "pollux/contexts/identity-access/registration-service/transport/http"
	pollservice "pollux/contexts/polling/poll-service"
	pollerrors "pollux/contexts/polling/poll-service/domain/errors"
	pollhttp "pollux/contexts/polling/poll-service/transport/http"
	subscriptionservice "pollux/contexts/polling/subscription-service"
	suberrors "pollux/contexts/polling/subscription-service/domain/errors"
	subhttp "pollux/contexts/polling/subscription-service/transport/http"
	tokenledger "pollux/contexts/token-core/token-ledger"
	ledgererrors "pollux/contexts/token-core/token-ledger/domain/errors"
	ledgerhttp "pollux/contexts/token-core/token-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	access        accesscontrol.Module
	registry      registrationservice.Module
	ledger        tokenledger.Module
	polls         pollservice.Module
	subscriptions subscriptionservice.Module
}

func New(
	access accesscontrol.Module,
	registry registrationservice.Module,
	ledger tokenledger.Module,
	polls pollservice.Module,
	subscriptions subscriptionservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		access:        access,
		registry:      registry,
		ledger:        ledger,
		polls:         polls,
		subscriptions: subscriptions,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/access/v1/roles/assign", s.handleAssignRole)
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/role", s.handleAccountRole)

	s.mux.HandleFunc("POST /api/registry/v1/users", s.handleRegisterUser)
	s.mux.HandleFunc("POST /api/registry/v1/instances", s.handleRegisterInstance)
	s.mux.HandleFunc("GET /api/registry/v1/accounts/{account}", s.handleGetAccount)

	s.mux.HandleFunc("GET /api/ledger/v1/balances/{holder}/{asset_id}", s.handleBalance)
	s.mux.HandleFunc("GET /api/ledger/v1/assets/{asset_id}", s.handleAsset)
	s.mux.HandleFunc("POST /api/ledger/v1/approvals", s.handleSetApproval)
	s.mux.HandleFunc("GET /api/ledger/v1/approvals/{owner}/{spender}", s.handleGetApproval)
	s.mux.HandleFunc("POST /api/ledger/v1/transfers", s.handleTransfer)
	s.mux.HandleFunc("POST /api/ledger/v1/authorizations/consume", s.handleConsumeAuthorization)

	s.mux.HandleFunc("POST /api/polls/v1", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/polls/v1", s.handleListPolls)
	s.mux.HandleFunc("GET /api/polls/v1/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("GET /api/polls/v1/{poll_id}/results", s.handleResults)
	s.mux.HandleFunc("GET /api/polls/v1/{poll_id}/results/{option_index}", s.handleVoteCount)
	s.mux.HandleFunc("POST /api/polls/v1/{poll_id}/votes", s.handleCastVotes)
	s.mux.HandleFunc("POST /api/polls/v1/{poll_id}/votes/authorized", s.handleAuthorizedVotes)
	s.mux.HandleFunc("POST /api/polls/v1/{poll_id}/subscriptions", s.handleSubscribe)
	s.mux.HandleFunc("GET /api/polls/v1/{poll_id}/subscriptions/{account}", s.handleSubscriptionStatus)
}

// callerAccount resolves the authenticated account. Authentication itself
// is owned by the gateway; this trusts the forwarded header.
func callerAccount(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Account-Id"))
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req accesshttp.AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.access.Handler.AssignRoleHandler(r.Context(), caller, req); err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleAccountRole(w http.ResponseWriter, r *http.Request) {
	resp, err := s.access.Handler.AccountRoleHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Account) == "" {
		req.Account = callerAccount(r)
	}
	if err := s.registry.Handler.RegisterUserHandler(r.Context(), req); err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (s *Server) handleRegisterInstance(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.RegisterInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Account) == "" {
		req.Account = callerAccount(r)
	}
	if err := s.registry.Handler.RegisterInstanceHandler(r.Context(), req); err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.AccountHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.BalanceHandler(r.Context(), r.PathValue("holder"), r.PathValue("asset_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.AssetHandler(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req ledgerhttp.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.SetApprovalHandler(r.Context(), caller, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleGetApproval(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ApprovalHandler(r.Context(), r.PathValue("owner"), r.PathValue("spender"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.TransferHandler(r.Context(), caller, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (s *Server) handleConsumeAuthorization(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req ledgerhttp.ConsumeAuthorizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.ConsumeAuthorizationHandler(r.Context(), caller, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "consumed"})
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writePollError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), caller, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ListPollsHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ResultsHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteCount(w http.ResponseWriter, r *http.Request) {
	optionIndex, err := strconv.Atoi(r.PathValue("option_index"))
	if err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_option_index", "option index must be an integer")
		return
	}
	votes, err := s.polls.Queries.GetVoteCount(r.Context(), r.PathValue("poll_id"), optionIndex)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":      r.PathValue("poll_id"),
		"option_index": optionIndex,
		"votes":        votes,
	})
}

func (s *Server) handleCastVotes(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writePollError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req pollhttp.CastVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.polls.Handler.CastVotesHandler(r.Context(), caller, r.PathValue("poll_id"), req); err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cast"})
}

func (s *Server) handleAuthorizedVotes(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writePollError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req pollhttp.AuthorizedVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.polls.Handler.AuthorizedVotesHandler(r.Context(), caller, r.PathValue("poll_id"), req); err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cast"})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	caller := callerAccount(r)
	if caller == "" {
		writeSubscriptionError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	var req subhttp.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubscriptionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.subscriptions.Handler.SubscribeHandler(r.Context(), caller, r.PathValue("poll_id"), req); err != nil {
		writeSubscriptionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.subscriptions.Handler.StatusHandler(r.Context(), r.PathValue("account"), r.PathValue("poll_id"))
	if err != nil {
		writeSubscriptionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrAccessDenied):
		writeAccessError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, accesserrors.ErrRoleConflict):
		writeAccessError(w, http.StatusConflict, "role_conflict", err.Error())
	case errors.Is(err, accesserrors.ErrInvalidRole),
		errors.Is(err, accesserrors.ErrInvalidAccount):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrAlreadyRegistered):
		writeRegistryError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, registryerrors.ErrRoleConflict):
		writeRegistryError(w, http.StatusConflict, "role_conflict", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidProfile):
		writeRegistryError(w, http.StatusBadRequest, "invalid_profile", err.Error())
	case errors.Is(err, registryerrors.ErrNotRegistered):
		writeRegistryError(w, http.StatusNotFound, "not_registered", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrAccessDenied):
		writeLedgerError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writeLedgerError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, ledgererrors.ErrUnknownAsset):
		writeLedgerError(w, http.StatusNotFound, "unknown_asset", err.Error())
	case errors.Is(err, ledgererrors.ErrAssetExists):
		writeLedgerError(w, http.StatusConflict, "asset_exists", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidTransfer):
		writeLedgerError(w, http.StatusBadRequest, "invalid_transfer", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidSignature):
		writeLedgerError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
	case errors.Is(err, ledgererrors.ErrAuthorizationExpired):
		writeLedgerError(w, http.StatusGone, "authorization_expired", err.Error())
	case errors.Is(err, ledgererrors.ErrAuthorizationConsumed):
		writeLedgerError(w, http.StatusConflict, "authorization_consumed", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// Poll mutations cross into the ledger, so ticket and balance failures
// surface here with their ledger sentinels intact.
func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrPollClosed):
		writePollError(w, http.StatusGone, "poll_closed", err.Error())
	case errors.Is(err, pollerrors.ErrAccessDenied),
		errors.Is(err, ledgererrors.ErrAccessDenied):
		writePollError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidPollParameters):
		writePollError(w, http.StatusBadRequest, "invalid_poll_parameters", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidOption):
		writePollError(w, http.StatusBadRequest, "invalid_option", err.Error())
	case errors.Is(err, pollerrors.ErrInsufficientBalance),
		errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writePollError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidAuthorization):
		writePollError(w, http.StatusBadRequest, "invalid_authorization", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidSignature):
		writePollError(w, http.StatusUnauthorized, "invalid_signature", err.Error())
	case errors.Is(err, ledgererrors.ErrAuthorizationExpired):
		writePollError(w, http.StatusGone, "authorization_expired", err.Error())
	case errors.Is(err, ledgererrors.ErrAuthorizationConsumed):
		writePollError(w, http.StatusConflict, "authorization_consumed", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSubscriptionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, suberrors.ErrAlreadySubscribed):
		writeSubscriptionError(w, http.StatusConflict, "already_subscribed", err.Error())
	case errors.Is(err, suberrors.ErrEligibilityFailed):
		writeSubscriptionError(w, http.StatusForbidden, "eligibility_failed", err.Error())
	case errors.Is(err, suberrors.ErrAccessDenied):
		writeSubscriptionError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, suberrors.ErrPollClosed):
		writeSubscriptionError(w, http.StatusGone, "poll_closed", err.Error())
	case errors.Is(err, suberrors.ErrPollNotFound):
		writeSubscriptionError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, suberrors.ErrNotRegistered):
		writeSubscriptionError(w, http.StatusNotFound, "not_registered", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writeSubscriptionError(w, http.StatusConflict, "insufficient_balance", err.Error())
	default:
		writeSubscriptionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSubscriptionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, subhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
