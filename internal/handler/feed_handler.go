package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/dto"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type feedService interface {
	CalendarICS(ctx context.Context, req service.EventListRequest) ([]byte, error)
	FeedRSS(ctx context.Context, req service.EventListRequest) ([]byte, error)
}

// FeedHandler serves the ICS and RSS event feeds.
type FeedHandler struct {
	service feedService
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(service feedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// CalendarICS godoc
// @Summary Upcoming events as an iCalendar feed
// @Tags Feeds
// @Produce text/calendar
// @Success 200 {string} string "ICS document"
// @Router /events/calendar.ics [get]
func (h *FeedHandler) CalendarICS(c *gin.Context) {
	payload, err := h.feed(c, h.service.CalendarICS)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", payload)
}

// FeedRSS godoc
// @Summary Upcoming events as an RSS 2.0 feed
// @Tags Feeds
// @Produce application/rss+xml
// @Success 200 {string} string "RSS document"
// @Router /events/feed.rss [get]
func (h *FeedHandler) FeedRSS(c *gin.Context) {
	payload, err := h.feed(c, h.service.FeedRSS)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", payload)
}

func (h *FeedHandler) feed(c *gin.Context, render func(context.Context, service.EventListRequest) ([]byte, error)) ([]byte, error) {
	var query dto.EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters")
	}
	return render(c.Request.Context(), listRequestFromQuery(query))
}
