package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/basexlabs/basex-oracle/protocol"
)

const allChains = "all-chains"

type analyzeRequest struct {
	VideoID any `json:"videoId"`
}

// handleAnalyzeVideo serves POST /analyze-video.
func (a *API) handleAnalyzeVideo(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	switch id := req.VideoID.(type) {
	case nil:
		respondError(c, http.StatusBadRequest, "Video ID is required")
	case string:
		if id == "" {
			respondError(c, http.StatusBadRequest, "Video ID is required")
			return
		}
		payload, err := a.analyzer.Analyze(c.Request.Context(), id)
		if err != nil {
			a.respondErr(c, err)
			return
		}
		respondOK(c, payload)
	default:
		respondError(c, http.StatusBadRequest, "Video ID must be a string")
	}
}

// handleGetVideo serves GET /video/:videoId.
func (a *API) handleGetVideo(c *gin.Context) {
	video, err := a.analyzer.GetVideo(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		a.respondErr(c, err)
		return
	}
	respondOK(c, video)
}

type chainAnalysis struct {
	Metadata string `json:"metadata"`
	Score    uint64 `json:"score"`
	Exists   bool   `json:"exists"`
	ChainID  uint64 `json:"chainId"`
}

type chainAnalysisError struct {
	Error  string `json:"error"`
	Exists bool   `json:"exists"`
}

// handleGetAnalysis serves GET /analysis/:videoId/:network, where network may be all-chains.
func (a *API) handleGetAnalysis(c *gin.Context) {
	videoID, network := c.Param("videoId"), c.Param("network")
	if !protocol.IsValidVideoID(videoID) {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid video ID %q", videoID))
		return
	}
	if network == allChains {
		respondOK(c, a.queryAllChains(c.Request.Context(), videoID))
		return
	}

	accessor, ok := a.chain(network)
	if !ok {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Network %s not supported", network))
		return
	}
	record, err := accessor.QueryResult(c.Request.Context(), videoID)
	if err != nil {
		a.lggr.Errorw("Failed to fetch analysis", "network", network, "videoID", videoID, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch analysis")
		return
	}
	respondOK(c, toChainAnalysis(record, accessor.ChainID()))
}

// queryAllChains reads videoID from every network concurrently. A failing network is
// reported in place and never fails the others.
func (a *API) queryAllChains(ctx context.Context, videoID string) map[string]any {
	var (
		mu      sync.Mutex
		results = make(map[string]any)
		g       errgroup.Group
	)
	for _, network := range a.networks() {
		g.Go(func() error {
			accessor, ok := a.chain(network)
			if !ok {
				return nil
			}
			var result any
			record, err := accessor.QueryResult(ctx, videoID)
			if err != nil {
				a.lggr.Errorw("Failed to fetch analysis", "network", network, "videoID", videoID, "error", err)
				result = chainAnalysisError{Error: "Failed to fetch analysis", Exists: false}
			} else {
				result = toChainAnalysis(record, accessor.ChainID())
			}
			mu.Lock()
			defer mu.Unlock()
			results[network] = result
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type requestAnalysisResponse struct {
	Network string `json:"network"`
	VideoID string `json:"videoId"`
	TxHash  string `json:"txHash"`
}

// handleRequestAnalysis serves POST /analysis/:videoId/:network/request.
func (a *API) handleRequestAnalysis(c *gin.Context) {
	videoID, network := c.Param("videoId"), c.Param("network")
	if !protocol.IsValidVideoID(videoID) {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid video ID %q", videoID))
		return
	}
	accessor, ok := a.chain(network)
	if !ok {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Network %s not supported", network))
		return
	}

	txHash, err := accessor.RequestAnalysis(c.Request.Context(), videoID)
	switch {
	case errors.Is(err, protocol.ErrConfiguration):
		respondError(c, http.StatusServiceUnavailable, "Request submission is disabled: no signing key configured")
	case err != nil:
		a.lggr.Errorw("Failed to request analysis", "network", network, "videoID", videoID, "error", err)
		respondError(c, http.StatusBadGateway, "Failed to submit analysis request")
	default:
		a.lggr.Infow("Analysis requested", "network", network, "videoID", videoID, "txHash", txHash)
		respondOK(c, requestAnalysisResponse{Network: network, VideoID: videoID, TxHash: txHash})
	}
}

func toChainAnalysis(record protocol.AnalysisRecord, chainID uint64) chainAnalysis {
	return chainAnalysis{
		Metadata: record.Metadata,
		Score:    record.Score,
		Exists:   record.Exists,
		ChainID:  chainID,
	}
}
