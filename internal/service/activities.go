// Package service implements the per-provider proxy pipelines: upstream call,
// envelope normalization and payload sanitization.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
	"trektoo-proxy-go/internal/sanitize"
)

// ErrNoImage is returned by ResolveImage when the activity exists but has no
// usable image URL.
var ErrNoImage = errors.New("activity has no usable image")

// fallbackCategories is served by Categories when mock mode is enabled and
// upstream returns no categories.
var fallbackCategories = []model.Category{
	{ID: 1, Name: "Tours & Sightseeing"},
	{ID: 2, Name: "Activities & Experiences"},
	{ID: 3, Name: "Attractions & Shows"},
	{ID: 4, Name: "Transport & Travel Services"},
	{ID: 5, Name: "Food & Dining"},
}

// ActivitiesService proxies the tours/activities provider. The provider
// wraps every response in a { success: bool } envelope.
type ActivitiesService struct {
	client *client.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewActivitiesService creates an ActivitiesService.
func NewActivitiesService(c *client.Client, cfg *config.Config, logger *slog.Logger) *ActivitiesService {
	return &ActivitiesService{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "activities_service"),
	}
}

// ActivityListParams are the validated listing filters.
type ActivityListParams struct {
	Limit       int
	Page        int
	CityIDs     string
	CountryIDs  string
	CategoryIDs string
}

type activityListEnvelope struct {
	Success  bool                `json:"success"`
	Activity *model.ActivityList `json:"activity"`
	ErrorMsg string              `json:"error_msg"`
}

type activityDetailEnvelope struct {
	Success  bool            `json:"success"`
	Activity *model.Activity `json:"activity"`
	ErrorMsg string          `json:"error_msg"`
}

type categoriesEnvelope struct {
	Success    bool             `json:"success"`
	Categories []model.Category `json:"categories"`
	ErrorMsg   string           `json:"error_msg"`
}

// List fetches a page of activities. A successful envelope with a missing
// payload degrades to an empty listing rather than an error.
func (s *ActivitiesService) List(ctx context.Context, p ActivityListParams) (model.ActivityList, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("language", s.cfg.Activities.Language)
	if p.CityIDs != "" {
		q.Set("city_ids", p.CityIDs)
	}
	if p.CountryIDs != "" {
		q.Set("country_ids", p.CountryIDs)
	}
	if p.CategoryIDs != "" {
		q.Set("category_ids", p.CategoryIDs)
	}

	var env activityListEnvelope
	if err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: "/activities", Query: q}, &env); err != nil {
		return model.ActivityList{}, err
	}

	switch r := normalizeList(&env); r.Kind {
	case model.KindOk:
		list := r.Payload
		sanitize.ActivityList(&list)
		return list, nil
	case model.KindShapeMismatch:
		s.logger.Warn("activities listing missing payload, degrading to empty result",
			"page", p.Page,
		)
		return model.EmptyActivityList(p.Page, p.Limit), nil
	default:
		return model.ActivityList{}, &model.UpstreamFailureError{Message: r.Message}
	}
}

func normalizeList(env *activityListEnvelope) model.Result[model.ActivityList] {
	if !env.Success {
		return model.UpstreamFailure[model.ActivityList](env.ErrorMsg)
	}
	if env.Activity == nil {
		return model.ShapeMismatch[model.ActivityList]()
	}
	return model.Ok(*env.Activity)
}

// Get fetches one activity by id. A provider-signaled failure or a missing
// payload maps to not-found: the catalog has no such entry.
func (s *ActivitiesService) Get(ctx context.Context, id int) (model.Activity, error) {
	q := url.Values{}
	q.Set("language", s.cfg.Activities.Language)

	var env activityDetailEnvelope
	err := s.client.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/activities/" + strconv.Itoa(id),
		Query:  q,
	}, &env)
	if err != nil {
		return model.Activity{}, err
	}

	if !env.Success || env.Activity == nil {
		return model.Activity{}, model.ErrNotFound
	}

	a := *env.Activity
	sanitize.Activity(&a)
	return a, nil
}

// Categories fetches the category list. When mock mode is enabled an empty
// upstream list is replaced with a fixed fallback set; otherwise the empty
// list is returned as-is.
func (s *ActivitiesService) Categories(ctx context.Context, language string) ([]model.Category, error) {
	if language == "" {
		language = s.cfg.Activities.Language
	}
	q := url.Values{}
	q.Set("language", language)

	var env categoriesEnvelope
	if err := s.client.Do(ctx, client.Request{Method: http.MethodGet, Path: "/activities/categories", Query: q}, &env); err != nil {
		return nil, err
	}

	if !env.Success {
		return nil, &model.UpstreamFailureError{Message: env.ErrorMsg}
	}

	cats := env.Categories
	if len(cats) == 0 {
		if s.cfg.Mock.Enabled {
			s.logger.Info("upstream returned no categories, serving mock fallback list")
			return fallbackCategories, nil
		}
		return []model.Category{}, nil
	}

	for i := range cats {
		sanitize.Category(&cats[i])
	}
	return cats, nil
}

// ResolveImage fetches an activity's detail and returns its primary image
// URL, falling back to the first gallery entry.
func (s *ActivitiesService) ResolveImage(ctx context.Context, id int) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if a.ImageURL != "" {
		return a.ImageURL, nil
	}
	for _, u := range a.Gallery {
		if u != "" {
			return u, nil
		}
	}
	return "", ErrNoImage
}
