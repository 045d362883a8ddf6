package model

// Activity is a single tours/activities catalog entry. Free-text and URL
// fields originate upstream and must pass through the sanitizer before
// reaching clients.
type Activity struct {
	ID          int     `json:"activity_id"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle,omitempty"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	City        string  `json:"city_name,omitempty"`
	Country     string  `json:"country_name,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`

	ImageURL  string          `json:"image_url,omitempty"`
	Gallery   []string        `json:"gallery,omitempty"`
	Itinerary []ItineraryItem `json:"itinerary,omitempty"`
	Policies  []Policy        `json:"policies,omitempty"`
	Features  []string        `json:"features,omitempty"`
}

// ItineraryItem is one step of an activity itinerary.
type ItineraryItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Policy is a titled block of free-text policy content.
type Policy struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// ActivityList is the paginated activities listing payload.
type ActivityList struct {
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	HasNext    bool       `json:"has_next"`
	Activities []Activity `json:"activity_list"`
}

// EmptyActivityList is the well-defined empty result substituted when a
// listing response is missing its payload.
func EmptyActivityList(page, limit int) ActivityList {
	return ActivityList{Page: page, Limit: limit, Activities: []Activity{}}
}

// Category is an activity category.
type Category struct {
	ID   int    `json:"category_id"`
	Name string `json:"name"`
}
