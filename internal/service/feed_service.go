package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

const feedEventLimit = 100

type listComposer interface {
	List(ctx context.Context, req EventListRequest) (*EventListResult, error)
}

// FeedService renders the published upcoming events as ICS and RSS feeds.
type FeedService struct {
	events listComposer
	cache  *CacheService
	cfg    config.FeedsConfig
	logger *zap.Logger
}

// NewFeedService constructs the service.
func NewFeedService(events listComposer, cache *CacheService, cfg config.FeedsConfig, logger *zap.Logger) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{events: events, cache: cache, cfg: cfg, logger: logger}
}

// CalendarICS renders upcoming occurrences as an iCalendar document.
// Recurring events appear once per expanded occurrence.
func (s *FeedService) CalendarICS(ctx context.Context, req EventListRequest) ([]byte, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "feeds are disabled")
	}
	result, err := s.listForFeed(ctx, req)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + s.cfg.SiteName + "//events//EN")

	now := time.Now().UTC()
	for _, occ := range result.Events {
		uid := fmt.Sprintf("%s-%s@%s", occ.ID, occ.OccurrenceDate.Format("20060102"), feedHost(s.cfg.SiteURL))
		event := cal.AddEvent(uid)
		event.SetDtStampTime(now)
		event.SetSummary(occ.Title)
		if occ.Content != "" {
			event.SetDescription(occ.Content)
		}
		if location := feedLocation(occ.Event); location != "" {
			event.SetLocation(location)
		}
		event.SetURL(fmt.Sprintf("%s/event/%s", s.cfg.SiteURL, occ.Slug))

		start, allDay := combineClock(occ.OccurrenceDate, occ.StartTime)
		if allDay {
			event.SetAllDayStartAt(occ.OccurrenceDate)
			end := occ.OccurrenceDate.AddDate(0, 0, 1)
			if occ.OccurrenceEndDate != nil {
				end = occ.OccurrenceEndDate.AddDate(0, 0, 1)
			}
			event.SetAllDayEndAt(end)
			continue
		}
		event.SetStartAt(start)
		endDate := occ.OccurrenceDate
		if occ.OccurrenceEndDate != nil {
			endDate = *occ.OccurrenceEndDate
		}
		if end, noClock := combineClock(endDate, occ.EndTime); noClock {
			event.SetEndAt(start.Add(time.Hour))
		} else {
			event.SetEndAt(end)
		}
	}

	return []byte(cal.Serialize()), nil
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// FeedRSS renders upcoming occurrences as an RSS 2.0 feed.
func (s *FeedService) FeedRSS(ctx context.Context, req EventListRequest) ([]byte, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "feeds are disabled")
	}
	result, err := s.listForFeed(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]rssItem, 0, len(result.Events))
	for _, occ := range result.Events {
		link := fmt.Sprintf("%s/event/%s", s.cfg.SiteURL, occ.Slug)
		start, _ := combineClock(occ.OccurrenceDate, occ.StartTime)
		items = append(items, rssItem{
			Title:       fmt.Sprintf("%s (%s)", occ.Title, occ.OccurrenceDate.Format("2006-01-02")),
			Link:        link,
			GUID:        fmt.Sprintf("%s-%s", occ.ID, occ.OccurrenceDate.Format("20060102")),
			PubDate:     start.Format(time.RFC1123Z),
			Description: occ.Content,
		})
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       s.cfg.SiteName,
			Link:        s.cfg.SiteURL,
			Description: "Upcoming community events",
			Items:       items,
		},
	}

	payload, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render rss feed")
	}
	return append([]byte(xml.Header), payload...), nil
}

func (s *FeedService) listForFeed(ctx context.Context, req EventListRequest) (*EventListResult, error) {
	req.Page = 1
	req.PerPage = feedEventLimit
	req.Status = string(models.EventStatusPublish)
	req.Archive = false
	return s.events.List(ctx, req)
}

// combineClock merges a HH:MM clock into a date; the second return reports
// whether no clock was set (all-day semantics).
func combineClock(date time.Time, clock *string) (time.Time, bool) {
	if clock == nil || *clock == "" {
		return date, true
	}
	parsed, err := time.Parse("15:04", *clock)
	if err != nil {
		return date, true
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), false
}

func feedLocation(event models.Event) string {
	switch {
	case event.LocationName != nil && event.LocationAddress != nil:
		return *event.LocationName + ", " + *event.LocationAddress
	case event.LocationName != nil:
		return *event.LocationName
	case event.LocationAddress != nil:
		return *event.LocationAddress
	}
	return ""
}

func feedHost(siteURL string) string {
	for i := 0; i < len(siteURL); i++ {
		if siteURL[i] == ':' && i+2 < len(siteURL) && siteURL[i+1] == '/' && siteURL[i+2] == '/' {
			return siteURL[i+3:]
		}
	}
	return siteURL
}
