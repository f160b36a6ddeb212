package dto

// EventListQuery mirrors the public listing query string.
type EventListQuery struct {
	Page             int    `form:"page"`
	PerPage          int    `form:"per_page"`
	Status           string `form:"status"`
	EventType        string `form:"event_type"`
	ServiceBody      string `form:"service_body"`
	Categories       string `form:"categories"`
	CategoryRelation string `form:"category_relation"`
	Tags             string `form:"tags"`
	StartDate        string `form:"start_date"`
	EndDate          string `form:"end_date"`
	Archive          bool   `form:"archive"`
	Timezone         string `form:"timezone"`
	SourceIDs        string `form:"source_ids"`
	OrderBy          string `form:"order_by"`
	Order            string `form:"order"`
}

// SearchQuery is the query string for the search endpoints.
type SearchQuery struct {
	Query   string `form:"q"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// AnnouncementListQuery filters the public announcement feed.
type AnnouncementListQuery struct {
	ServiceBody string `form:"service_body"`
	Categories  string `form:"categories"`
	Tags        string `form:"tags"`
}

// StatusUpdateRequest is the moderation payload.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}
