package model

// Hotel is a hotel catalog entry from the hotel provider.
type Hotel struct {
	ID          int      `json:"id"`
	Name        string   `json:"title"`
	Description string   `json:"content,omitempty"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	Stars       float64  `json:"star_rate,omitempty"`
	ReviewScore float64  `json:"review_score,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Lat         float64  `json:"map_lat,omitempty"`
	Lon         float64  `json:"map_lng,omitempty"`
	ImageURL    string   `json:"image,omitempty"`
	Gallery     []string `json:"gallery,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
	Policies    []Policy `json:"policy,omitempty"`
}

// HotelSearchResult is the paginated hotel search payload.
type HotelSearchResult struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Hotels     []Hotel `json:"data"`
}

// Room is one bookable room type with availability pricing.
type Room struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	BedType     string   `json:"bed_type,omitempty"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency,omitempty"`
	MaxAdults   int      `json:"adults"`
	MaxChildren int      `json:"children"`
	Quantity    int      `json:"number,omitempty"`
	Gallery     []string `json:"gallery,omitempty"`
	Conditions  []string `json:"conditions,omitempty"`
}

// Booking is a confirmed or in-progress booking record.
type Booking struct {
	Code      string         `json:"code"`
	Status    string         `json:"status"`
	Total     float64        `json:"total"`
	Currency  string         `json:"currency,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	Service   BookingService `json:"service"`
	Gateway   PaymentGateway `json:"gateway"`
}

// BookingService describes the booked service (the hotel stay).
type BookingService struct {
	Title     string `json:"title"`
	Address   string `json:"address,omitempty"`
	ImageURL  string `json:"image,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// PaymentGateway carries payment instructions attached to a booking.
type PaymentGateway struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction,omitempty"`
}

// AddToCartRequest is the inbound body for the add-to-cart endpoint. All
// fields are required; validation failures name the missing field.
type AddToCartRequest struct {
	ServiceID   int    `json:"service_id" validate:"required"`
	ServiceType string `json:"service_type" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Adults      *int   `json:"adults" validate:"required"`
	Children    *int   `json:"children" validate:"required"`
	Rooms       *int   `json:"rooms" validate:"required"`
}

// CartItem is the payload returned by a successful add-to-cart call.
type CartItem struct {
	BookingCode string  `json:"booking_code"`
	Total       float64 `json:"total,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

// User is the authenticated user profile returned by the auth endpoints.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// BookingHistory is the paginated booking history payload.
type BookingHistory struct {
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	MaxPages int       `json:"max_pages,omitempty"`
	Bookings []Booking `json:"data"`
}
