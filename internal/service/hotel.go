package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
	"trektoo-proxy-go/internal/sanitize"
)

// HotelService proxies the hotel provider. The provider wraps responses in a
// numeric { status: 1|0 } envelope; 1 means success.
//
// Listing reads (search, availability) degrade to empty results when a
// successful envelope is missing its payload. Booking reads and writes do
// not: hiding a failed booking behind a fabricated success body would be
// worse than surfacing the error.
type HotelService struct {
	client *client.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewHotelService creates a HotelService.
func NewHotelService(c *client.Client, cfg *config.Config, logger *slog.Logger) *HotelService {
	return &HotelService{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "hotel_service"),
	}
}

// HotelSearchParams are the validated hotel search parameters.
type HotelSearchParams struct {
	LocationID int
	Checkin    string
	Checkout   string
	Adults     int
	Children   int
	Page       int
}

type hotelSearchEnvelope struct {
	Status     int           `json:"status"`
	Message    string        `json:"message"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Data       []model.Hotel `json:"data"`
}

type hotelDetailEnvelope struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Data    *model.Hotel `json:"data"`
}

type availabilityEnvelope struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Rooms   []model.Room `json:"rooms"`
}

type addToCartEnvelope struct {
	Status      int     `json:"status"`
	Message     string  `json:"message"`
	BookingCode string  `json:"booking_code"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

type bookingDetailEnvelope struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Booking *model.Booking `json:"booking"`
}

type loginEnvelope struct {
	Status      int         `json:"status"`
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

type meEnvelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    *model.User `json:"data"`
}

type historyEnvelope struct {
	Status   int             `json:"status"`
	Message  string          `json:"message"`
	Total    int             `json:"total"`
	MaxPages int             `json:"max_pages"`
	Data     []model.Booking `json:"data"`
}

// Search runs a paginated hotel search. When mock mode sets a location
// override, the caller's location id is replaced and the override logged.
func (s *HotelService) Search(ctx context.Context, p HotelSearchParams) (model.HotelSearchResult, error) {
	locationID := p.LocationID
	if s.cfg.Mock.Enabled && s.cfg.Mock.LocationID != 0 {
		s.logger.Info("mock mode overriding search location",
			"requested", p.LocationID,
			"override", s.cfg.Mock.LocationID,
		)
		locationID = s.cfg.Mock.LocationID
	}

	q := url.Values{}
	q.Set("location_id", strconv.Itoa(locationID))
	q.Set("checkin", p.Checkin)
	q.Set("checkout", p.Checkout)
	q.Set("adults", strconv.Itoa(p.Adults))
	q.Set("children", strconv.Itoa(p.Children))
	q.Set("page", strconv.Itoa(p.Page))

	var env hotelSearchEnvelope
	if err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: "/hotel/search", Query: q}, &env); err != nil {
		return model.HotelSearchResult{}, err
	}

	switch r := normalizeSearch(&env); r.Kind {
	case model.KindOk:
		res := r.Payload
		for i := range res.Hotels {
			sanitize.Hotel(&res.Hotels[i])
		}
		return res, nil
	case model.KindShapeMismatch:
		s.logger.Warn("hotel search missing payload, degrading to empty result",
			"location_id", locationID,
		)
		return model.HotelSearchResult{Hotels: []model.Hotel{}}, nil
	default:
		return model.HotelSearchResult{}, &model.UpstreamFailureError{Message: r.Message}
	}
}

func normalizeSearch(env *hotelSearchEnvelope) model.Result[model.HotelSearchResult] {
	if env.Status != 1 {
		return model.UpstreamFailure[model.HotelSearchResult](env.Message)
	}
	if env.Data == nil {
		return model.ShapeMismatch[model.HotelSearchResult]()
	}
	return model.Ok(model.HotelSearchResult{
		Total:      env.Total,
		TotalPages: env.TotalPages,
		Hotels:     env.Data,
	})
}

// Detail fetches one hotel by id. A zero status or missing payload maps to
// not-found.
func (s *HotelService) Detail(ctx context.Context, id int) (model.Hotel, error) {
	var env hotelDetailEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/hotel/detail/" + strconv.Itoa(id),
	}, &env)
	if err != nil {
		return model.Hotel{}, err
	}

	if env.Status != 1 || env.Data == nil {
		return model.Hotel{}, model.ErrNotFound
	}

	h := *env.Data
	sanitize.Hotel(&h)
	return h, nil
}

// Availability lists bookable rooms for a hotel and date range. A successful
// envelope with no rooms payload degrades to an empty room list.
func (s *HotelService) Availability(ctx context.Context, id int, checkin, checkout string, adults, children int) ([]model.Room, error) {
	q := url.Values{}
	q.Set("checkin", checkin)
	q.Set("checkout", checkout)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("children", strconv.Itoa(children))

	var env availabilityEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/hotel/availability/" + strconv.Itoa(id),
		Query:  q,
	}, &env)
	if err != nil {
		return nil, err
	}

	if env.Status != 1 {
		return nil, model.ErrNotFound
	}
	if env.Rooms == nil {
		return []model.Room{}, nil
	}

	rooms := env.Rooms
	for i := range rooms {
		sanitize.Room(&rooms[i])
	}
	return rooms, nil
}

// AddToCart forwards a booking write with the caller's bearer token. This is
// a mutation: a malformed 2xx response is an error, never a fabricated
// success.
func (s *HotelService) AddToCart(ctx context.Context, bearer string, req *model.AddToCartRequest) (model.CartItem, error) {
	var env addToCartEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/booking/addToCart",
		Body:   req,
		Bearer: bearer,
	}, &env)
	if err != nil {
		return model.CartItem{}, err
	}

	if env.Status != 1 {
		return model.CartItem{}, &model.UpstreamFailureError{Message: env.Message}
	}
	if env.BookingCode == "" {
		return model.CartItem{}, &model.ShapeMismatchError{Expected: "booking_code"}
	}

	item := model.CartItem{
		BookingCode: sanitize.Text(env.BookingCode),
		Total:       env.Total,
		Currency:    sanitize.Text(env.Currency),
	}
	return item, nil
}

// BookingDetail fetches a booking record by code. Booking lookups are
// strict: a missing payload is an error, not an empty booking.
func (s *HotelService) BookingDetail(ctx context.Context, bearer, code string) (model.Booking, error) {
	var env bookingDetailEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/booking/" + url.PathEscape(code),
		Bearer: bearer,
	}, &env)
	if err != nil {
		return model.Booking{}, err
	}

	if env.Status != 1 {
		return model.Booking{}, model.ErrNotFound
	}
	if env.Booking == nil {
		return model.Booking{}, &model.ShapeMismatchError{Expected: "booking"}
	}

	b := *env.Booking
	sanitize.Booking(&b)
	return b, nil
}

// Login exchanges user credentials for an upstream access token.
func (s *HotelService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	body := map[string]string{"email": email, "password": password}

	var env loginEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   body,
	}, &env)
	if err != nil {
		return "", model.User{}, err
	}

	if env.Status != 1 || env.AccessToken == "" || env.User == nil {
		return "", model.User{}, &model.UpstreamFailureError{Message: env.Message}
	}

	u := *env.User
	sanitize.User(&u)
	return env.AccessToken, u, nil
}

// Me fetches the authenticated user's profile with the caller's token.
func (s *HotelService) Me(ctx context.Context, bearer string) (model.User, error) {
	var env meEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Bearer: bearer,
	}, &env)
	if err != nil {
		return model.User{}, err
	}

	if env.Status != 1 || env.Data == nil {
		return model.User{}, &model.UpstreamFailureError{Message: env.Message}
	}

	u := *env.Data
	sanitize.User(&u)
	return u, nil
}

// BookingHistory fetches a page of the user's past bookings. A successful
// envelope without data degrades to an empty page.
func (s *HotelService) BookingHistory(ctx context.Context, bearer string, page int) (model.BookingHistory, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var env historyEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/user/booking-history",
		Query:  q,
		Bearer: bearer,
	}, &env)
	if err != nil {
		return model.BookingHistory{}, err
	}

	if env.Status != 1 {
		return model.BookingHistory{}, &model.UpstreamFailureError{Message: env.Message}
	}

	bookings := env.Data
	if bookings == nil {
		bookings = []model.Booking{}
	}
	for i := range bookings {
		sanitize.Booking(&bookings[i])
	}
	return model.BookingHistory{
		Total:    env.Total,
		Page:     page,
		MaxPages: env.MaxPages,
		Bookings: bookings,
	}, nil
}
