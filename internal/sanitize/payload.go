package sanitize

import "trektoo-proxy-go/internal/model"

// The walkers below touch the fixed allow-list of free-text and URL fields
// for each payload shape. Ids, prices, counts and flags pass through
// untouched.

// Activity sanitizes one activity in place.
func Activity(a *model.Activity) {
	a.Title = Text(a.Title)
	a.Subtitle = Text(a.Subtitle)
	a.Description = Text(a.Description)
	a.Address = Text(a.Address)
	a.City = Text(a.City)
	a.Country = Text(a.Country)
	a.Currency = Text(a.Currency)
	a.ImageURL = URL(a.ImageURL)
	a.Gallery = URLs(a.Gallery)
	a.Features = Texts(a.Features)
	for i := range a.Itinerary {
		a.Itinerary[i].Title = Text(a.Itinerary[i].Title)
		a.Itinerary[i].Description = Text(a.Itinerary[i].Description)
	}
	for i := range a.Policies {
		a.Policies[i].Title = Text(a.Policies[i].Title)
		a.Policies[i].Content = Text(a.Policies[i].Content)
	}
}

// ActivityList sanitizes every activity in a listing.
func ActivityList(l *model.ActivityList) {
	for i := range l.Activities {
		Activity(&l.Activities[i])
	}
}

// Category sanitizes one category in place.
func Category(c *model.Category) {
	c.Name = Text(c.Name)
}

// Hotel sanitizes one hotel in place.
func Hotel(h *model.Hotel) {
	h.Name = Text(h.Name)
	h.Description = Text(h.Description)
	h.Address = Text(h.Address)
	h.City = Text(h.City)
	h.Country = Text(h.Country)
	h.Currency = Text(h.Currency)
	h.ImageURL = URL(h.ImageURL)
	h.Gallery = URLs(h.Gallery)
	h.Facilities = Texts(h.Facilities)
	for i := range h.Policies {
		h.Policies[i].Title = Text(h.Policies[i].Title)
		h.Policies[i].Content = Text(h.Policies[i].Content)
	}
}

// Room sanitizes one room in place.
func Room(r *model.Room) {
	r.Title = Text(r.Title)
	r.Description = Text(r.Description)
	r.BedType = Text(r.BedType)
	r.Currency = Text(r.Currency)
	r.Gallery = URLs(r.Gallery)
	r.Conditions = Texts(r.Conditions)
}

// Booking sanitizes one booking in place, including the nested service and
// payment gateway blocks.
func Booking(b *model.Booking) {
	b.Status = Text(b.Status)
	b.Currency = Text(b.Currency)
	b.Service.Title = Text(b.Service.Title)
	b.Service.Address = Text(b.Service.Address)
	b.Service.ImageURL = URL(b.Service.ImageURL)
	b.Gateway.Name = Text(b.Gateway.Name)
	b.Gateway.Instruction = Text(b.Gateway.Instruction)
}

// User sanitizes a user profile in place.
func User(u *model.User) {
	u.FirstName = Text(u.FirstName)
	u.LastName = Text(u.LastName)
	u.Phone = Text(u.Phone)
	u.Address = Text(u.Address)
}
