package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/fetch"
	"github.com/wonny/fundranker/internal/metrics"
	"github.com/wonny/fundranker/internal/universe"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// FundsHandler serves per-fund metric bundles computed on demand.
type FundsHandler struct {
	fetcher *fetch.Service
	engine  *metrics.Engine
	builder *universe.Builder
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewFundsHandler creates a new funds handler. builder and cache may
// be nil.
func NewFundsHandler(fetcher *fetch.Service, engine *metrics.Engine, builder *universe.Builder, cache *redis.Cache, log *logger.Logger) *FundsHandler {
	return &FundsHandler{
		fetcher: fetcher,
		engine:  engine,
		builder: builder,
		cache:   cache,
		logger:  log,
	}
}

// GetMetrics returns the metric bundle for one scheme.
// GET /api/funds/{schemeCode}/metrics
func (h *FundsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeCode := mux.Vars(r)["schemeCode"]

	compute := func() (interface{}, error) {
		fund := h.lookupFund(r, schemeCode)

		entry, err := h.fetcher.Series(ctx, schemeCode)
		if err != nil {
			return nil, err
		}
		return h.engine.Compute(ctx, fund, entry.Series)
	}

	var bundle *contracts.MetricsBundle
	var err error
	if h.cache != nil {
		var cached contracts.MetricsBundle
		err = h.cache.GetOrSet(ctx, redis.MetricsKey(schemeCode), &cached, redis.TTLMedium, compute)
		bundle = &cached
	} else {
		var value interface{}
		value, err = compute()
		if err == nil {
			bundle = value.(*contracts.MetricsBundle)
		}
	}
	if err != nil {
		h.logger.WithError(err).WithField("scheme_code", schemeCode).Error("Failed to compute fund metrics")
		respondError(w, http.StatusBadGateway, "Failed to compute metrics: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    bundle,
	})
}

// lookupFund resolves the scheme against the cached master list so the
// bundle carries the fund name and category. Falls back to a bare fund
// when the list is unavailable.
func (h *FundsHandler) lookupFund(r *http.Request, schemeCode string) contracts.Fund {
	fund := contracts.Fund{SchemeCode: schemeCode}

	funds, err := h.fetcher.Funds(r.Context())
	if err != nil {
		h.logger.WithError(err).Debug("Fund master list unavailable for lookup")
		return fund
	}
	for _, f := range funds {
		if f.SchemeCode == schemeCode {
			fund = f
			break
		}
	}

	if h.builder != nil && fund.Category == "" {
		fund.Category = h.builder.Classify(fund.Name)
	}
	return fund
}
