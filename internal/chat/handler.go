package chat

import (
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/norvia/storefront-api/internal/common"
	"github.com/norvia/storefront-api/internal/obs"
)

// Handler proxies the storefront chat widget to the hosted completion
// API. Its contract is "always return a displayable message": the only
// non-200 response is for a completely malformed request.
type Handler struct {
	// Completer is nil when no credential is configured; the handler
	// then serves the canned unavailable message.
	Completer        Completer
	InstructionsPath string
	SupportEmail     string
	Logger           zerolog.Logger
	Validate         *validator.Validate
}

const maxHistoryLen = 50

type chatRequest struct {
	Messages []Message `json:"messages" validate:"required,min=1,dive"`
	Locale   string    `json:"locale"`
}

type chatResponse struct {
	Message string `json:"message"`
}

func (h *Handler) unavailableMessage(locale string) string {
	if locale == "nl" {
		return "Chat is momenteel niet beschikbaar. Neem contact op via " + h.SupportEmail
	}
	return "Chat is currently unavailable. Please contact us at " + h.SupportEmail
}

func fallbackMessage(locale string) string {
	if locale == "nl" {
		return "Sorry, er is iets misgegaan. Probeer het opnieuw."
	}
	return "Sorry, something went wrong. Please try again."
}

// Chat handles POST /api/v1/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := common.DecodeJSON(r, &req, 256<<10); err != nil {
		h.observe("invalid")
		common.JSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			h.observe("invalid")
			common.JSONError(w, http.StatusBadRequest, "Invalid request")
			return
		}
	}
	if len(req.Messages) > maxHistoryLen {
		req.Messages = req.Messages[len(req.Messages)-maxHistoryLen:]
	}

	if h.Completer == nil {
		h.observe("degraded")
		common.JSON(w, http.StatusOK, chatResponse{Message: h.unavailableMessage(req.Locale)})
		return
	}

	system := SystemPrompt(LoadInstructions(h.InstructionsPath), req.Locale)
	reply, err := h.Completer.Complete(r.Context(), system, req.Messages)
	if err != nil {
		h.observe("fallback")
		h.Logger.Error().Err(err).Msg("chat completion failed")
		common.JSON(w, http.StatusOK, chatResponse{Message: fallbackMessage(req.Locale)})
		return
	}

	h.observe("completed")
	common.JSON(w, http.StatusOK, chatResponse{Message: reply})
}

func (h *Handler) observe(result string) {
	if obs.ChatCompletionsTotal != nil {
		obs.ChatCompletionsTotal.WithLabelValues(result).Inc()
	}
}
