// Package api is the HTTP surface of the claims core: claim lifecycle for
// members and assessors, pause and remediation for governance, metrics
// for operators.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakesure/internal/bootstrap/config"
	"stakesure/internal/usecase/assessment"
	"stakesure/internal/usecase/ledger"
	"stakesure/internal/usecase/pausegate"
	"stakesure/internal/usecase/registry"
	"stakesure/internal/usecase/remediation"
)

type Server struct {
	ledger      *ledger.Service
	engine      *assessment.Service
	pauses      *pausegate.Service
	groups      *registry.Service
	remediation *remediation.Service
	registry    *prometheus.Registry
	cfg         config.HTTPConfig
}

func NewServer(
	ledgerSvc *ledger.Service,
	engine *assessment.Service,
	pauses *pausegate.Service,
	groups *registry.Service,
	remediationSvc *remediation.Service,
	promRegistry *prometheus.Registry,
	cfg config.HTTPConfig,
) *Server {
	return &Server{
		ledger:      ledgerSvc,
		engine:      engine,
		pauses:      pauses,
		groups:      groups,
		remediation: remediationSvc,
		registry:    promRegistry,
		cfg:         cfg,
	}
}

func (s *Server) Router() http.Handler {
	submitLimiter := newIdentityLimiter(s.cfg.SubmitPerMinute, s.cfg.RateBurst)
	voteLimiter := newIdentityLimiter(s.cfg.VotePerMinute, s.cfg.RateBurst)

	r := chi.NewRouter()
	r.Use(withRequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/claims", s.handleListClaims)
		r.Get("/claims/{claimID}", s.handleGetClaim)
		r.Get("/claims/{claimID}/assessment", s.handleGetAssessment)
		r.Get("/pause", s.handleGetPause)
		r.Get("/groups/count", s.handleGroupsCount)
		r.Get("/groups/{groupID}/assessors", s.handleListAssessors)

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)

			r.With(submitLimiter.middleware).Post("/claims", s.handleSubmitClaim)
			r.With(voteLimiter.middleware).Post("/claims/{claimID}/votes", s.handleCastVote)
			r.Post("/claims/{claimID}/redemption", s.handleRedeem)
			r.Post("/claims/{claimID}/deposit-retrieval", s.handleRetrieveDeposit)

			r.Post("/pause/proposals", s.handleProposePause)
			r.Post("/pause/confirmations", s.handleConfirmPause)
			r.Delete("/pause/proposals", s.handleCancelPause)

			r.Post("/groups/{groupID}/assessors", s.handleAddAssessors)
			r.Delete("/groups/{groupID}/assessors/{seatID}", s.handleRemoveAssessor)
			r.Put("/product-types/group", s.handleSetAssessingGroups)

			r.Post("/remediation/vote-undos", s.handleUndoVotes)
			r.Post("/remediation/claims/{claimID}/voting-extension", s.handleExtendVoting)
			r.Post("/remediation/groups/{groupID}/assessors", s.handleRemediationAddAssessors)
			r.Delete("/remediation/groups/{groupID}/assessors/{seatID}", s.handleRemediationRemoveAssessor)
		})
	})

	return r
}
