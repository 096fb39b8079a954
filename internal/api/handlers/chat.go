package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/internal/narrate"
	"github.com/petalworks/bloomcast/backend/internal/ranking"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// ChatHandler answers shopkeeper questions by narrating the current
// forecast figures through the configured narrator.
type ChatHandler struct {
	service  *forecast.Service
	ranker   *ranking.Ranker
	narrator contracts.Narrator
	cfg      *config.Config
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *forecast.Service, rk *ranking.Ranker, narrator contracts.Narrator, cfg *config.Config, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service:  svc,
		ranker:   rk,
		narrator: narrator,
		cfg:      cfg,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from another origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type chatRequest struct {
	Question string `json:"question"`
	Start    string `json:"start_date"`
	End      string `json:"end_date"`
}

type chatResponse struct {
	Answer string `json:"answer,omitempty"`
	Chunk  string `json:"chunk,omitempty"`
	Done   bool   `json:"done,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Chat answers one question.
// POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.narrator == nil {
		respondError(w, http.StatusServiceUnavailable, "narration is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	answer, err := h.answer(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Chat answer failed")
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    chatResponse{Answer: answer},
	})
}

// ChatWS answers questions over a websocket, one JSON message per
// question. Streaming narrators deliver the answer as chunk messages
// closed by a done marker; others send one answer message.
// GET /api/chat/ws
func (h *ChatHandler) ChatWS(w http.ResponseWriter, r *http.Request) {
	if h.narrator == nil {
		respondError(w, http.StatusServiceUnavailable, "narration is not configured")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("WebSocket read failed")
			}
			return
		}

		if req.Question == "" {
			if err := conn.WriteJSON(chatResponse{Error: "question must not be empty"}); err != nil {
				return
			}
			continue
		}

		prompt, err := h.buildPrompt(r.Context(), req)
		if err != nil {
			if err := conn.WriteJSON(chatResponse{Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		if streamer, ok := h.narrator.(narrate.Streamer); ok {
			err = streamer.SummarizeStream(r.Context(), prompt, func(chunk string) error {
				return conn.WriteJSON(chatResponse{Chunk: chunk})
			})
			if err != nil {
				h.logger.WithError(err).Error("Chat stream failed")
				if err := conn.WriteJSON(chatResponse{Error: err.Error()}); err != nil {
					return
				}
				continue
			}
			if err := conn.WriteJSON(chatResponse{Done: true}); err != nil {
				return
			}
			continue
		}

		answer, err := h.narrator.Summarize(r.Context(), prompt)
		if err != nil {
			h.logger.WithError(err).Error("Chat answer failed")
			if err := conn.WriteJSON(chatResponse{Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(chatResponse{Answer: answer}); err != nil {
			return
		}
	}
}

// answer builds the prompt and asks the narrator once.
func (h *ChatHandler) answer(ctx context.Context, req chatRequest) (string, error) {
	prompt, err := h.buildPrompt(ctx, req)
	if err != nil {
		return "", err
	}
	return h.narrator.Summarize(ctx, prompt)
}

// buildPrompt aggregates every metric with its ranking and renders the
// figures into a narration prompt.
func (h *ChatHandler) buildPrompt(ctx context.Context, req chatRequest) (string, error) {
	dr, err := forecast.ParseRange(req.Start, req.End)
	if err != nil {
		return "", err
	}

	low, high := h.cfg.Forecast.QuantityLow, h.cfg.Forecast.QuantityHigh
	results, err := h.service.AggregateAll(ctx, dr, func(contracts.Metric) forecast.QuantityPolicy {
		return forecast.NewSampledQuantity(low, high)
	})
	if err != nil {
		return "", err
	}

	var parts []narrate.Part
	for _, metric := range h.service.Metrics() {
		result := results[metric]

		parts = append(parts, narrate.Part{
			Label:      "Predicted " + string(metric),
			Aggregated: result,
		})

		top, err := h.ranker.Top(result, defaultTopN)
		if err != nil {
			return "", err
		}
		parts = append(parts, narrate.Part{
			Label:  "Top by " + string(metric),
			Ranked: top,
		})
	}

	return narrate.Build(dr, parts...).Prompt(req.Question), nil
}
