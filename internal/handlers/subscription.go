package handlers

import (
	"net/http"

	"vidshare-api/internal/middleware"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// ToggleSubscription subscribes the caller to the channel or cancels an
// existing subscription.
func (h *SubscriptionHandler) ToggleSubscription(c *gin.Context) {
	result, err := h.subscriptions.Toggle(c.Request.Context(), middleware.UserID(c), c.Param("channelId"))
	if err != nil {
		fail(c, err)
		return
	}
	if !result.Subscribed {
		utils.Respond(c, http.StatusOK, result, "Unsubscribed successfully.")
		return
	}
	utils.Respond(c, http.StatusCreated, result, "Subscribed successfully.")
}

func (h *SubscriptionHandler) GetChannelSubscribers(c *gin.Context) {
	entries, err := h.subscriptions.ListSubscribers(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, entries, "Subscriber list fetched successfully.")
}

func (h *SubscriptionHandler) GetSubscribedChannels(c *gin.Context) {
	entries, err := h.subscriptions.ListSubscriptions(c.Request.Context(), c.Param("subscriberId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, entries, "Subscribed list fetched successfully.")
}
