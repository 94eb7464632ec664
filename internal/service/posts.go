package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/validation"
)

const (
	minArchiveYear = 2000
	topTagsLimit   = 5
)

type CreatePostRequest struct {
	Title    string   `json:"title"    validate:"required"`
	Content  string   `json:"content"  validate:"required"`
	Category string   `json:"category" validate:"required"`
	Tags     []string `json:"tags"`
}

type UpdatePostRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

type ArchiveFilter struct {
	Year  int  `json:"year"`
	Month *int `json:"month"`
}

type PostCategoryWithCount struct {
	models.PostCategory
	PostCount int `json:"post_count"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type PostCategoryDetail struct {
	PostCategoryWithCount
	TopTags []TagCount `json:"top_tags"`
}

type PostService struct {
	Repo       repo.Repository[models.Post]
	Categories []models.PostCategory
	Now        func() time.Time
}

// List returns posts newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortNewest(posts)
	return posts, nil
}

func sortNewest(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].PublishedAt.After(posts[j].PublishedAt) })
}

func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	p, err := s.Repo.Get(ctx, id)
	return p, fromRepo(err, "post %s not found", id)
}

// Archive filters by publication year and, when month is not empty, month.
func (s *PostService) Archive(ctx context.Context, year, month string) ([]models.Post, ArchiveFilter, error) {
	maxYear := now(s.Now).Year() + 1
	y, err := strconv.Atoi(year)
	if err != nil || y < minArchiveYear || y > maxYear {
		return nil, ArchiveFilter{}, fail(ErrValidation, "invalid year, expected a year between %d and %d", minArchiveYear, maxYear)
	}
	f := ArchiveFilter{Year: y}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return nil, ArchiveFilter{}, fail(ErrValidation, "invalid month, expected a month between 1 and 12")
		}
		f.Month = &m
	}

	posts, err := s.List(ctx)
	if err != nil {
		return nil, f, err
	}
	out := make([]models.Post, 0)
	for _, p := range posts {
		pub := p.PublishedAt.UTC()
		if pub.Year() != f.Year {
			continue
		}
		if f.Month != nil && int(pub.Month()) != *f.Month {
			continue
		}
		out = append(out, p)
	}
	return out, f, nil
}

func (s *PostService) CategoryNames() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}

func (s *PostService) category(name string) (models.PostCategory, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.Categories {
		if c.Name == n {
			return c, nil
		}
	}
	return models.PostCategory{}, fail(ErrNotFound, "category '%s' not found", name)
}

func (s *PostService) ListCategories(ctx context.Context) ([]PostCategoryWithCount, error) {
	posts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PostCategoryWithCount, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, PostCategoryWithCount{PostCategory: c, PostCount: len(inPostCategory(posts, c.Name))})
	}
	return out, nil
}

func (s *PostService) GetCategory(ctx context.Context, name string) (PostCategoryDetail, error) {
	c, err := s.category(name)
	if err != nil {
		return PostCategoryDetail{}, err
	}
	posts, err := s.Repo.List(ctx)
	if err != nil {
		return PostCategoryDetail{}, err
	}
	own := inPostCategory(posts, c.Name)
	return PostCategoryDetail{
		PostCategoryWithCount: PostCategoryWithCount{PostCategory: c, PostCount: len(own)},
		TopTags:               topTags(own, topTagsLimit),
	}, nil
}

func (s *PostService) CategoryPosts(ctx context.Context, name string) ([]models.Post, models.PostCategory, error) {
	c, err := s.category(name)
	if err != nil {
		return nil, c, err
	}
	posts, err := s.List(ctx)
	if err != nil {
		return nil, c, err
	}
	return inPostCategory(posts, c.Name), c, nil
}

func inPostCategory(posts []models.Post, name string) []models.Post {
	out := make([]models.Post, 0)
	for _, p := range posts {
		if strings.EqualFold(p.Category, name) {
			out = append(out, p)
		}
	}
	return out
}

// topTags counts tags and keeps the most used; ties keep first-seen order.
func topTags(posts []models.Post, limit int) []TagCount {
	counts := map[string]int{}
	var order []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(order))
	for _, t := range order {
		out = append(out, TagCount{Tag: t, Count: counts[t]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *PostService) Create(ctx context.Context, who auth.Identity, req CreatePostRequest) (models.Post, error) {
	if err := validation.Struct(req); err != nil {
		return models.Post{}, fail(ErrValidation, "%s", err.Error())
	}
	c, err := s.category(req.Category)
	if err != nil {
		return models.Post{}, fail(ErrValidation, "unknown category %q, available: %s", req.Category, strings.Join(s.CategoryNames(), ", "))
	}

	p := models.Post{
		ID:          newID(),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Category:    c.Name,
		Author:      who.Username,
		Tags:        nonNil(req.Tags),
		PublishedAt: now(s.Now),
	}
	out, err := s.Repo.Insert(ctx, p)
	return out, fromRepo(err, "post %s already exists", p.ID)
}

// Update and Delete are open to the author and to admins.
func (s *PostService) Update(ctx context.Context, who auth.Identity, id string, req UpdatePostRequest) (models.Post, error) {
	var category string
	if req.Category != nil {
		c, err := s.category(*req.Category)
		if err != nil {
			return models.Post{}, fail(ErrValidation, "unknown category %q", *req.Category)
		}
		category = c.Name
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return models.Post{}, fail(ErrValidation, "title cannot be empty")
	}

	out, err := s.Repo.Update(ctx, id, func(p *models.Post) error {
		if p.Author != who.Username && !who.IsAdmin() {
			return fail(ErrForbidden, "only the author or an admin can edit this post")
		}
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			p.Content = *req.Content
		}
		if category != "" {
			p.Category = category
		}
		if req.Tags != nil {
			p.Tags = nonNil(*req.Tags)
		}
		return nil
	})
	return out, fromRepo(err, "post %s not found", id)
}

func (s *PostService) Delete(ctx context.Context, who auth.Identity, id string) (models.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if p.Author != who.Username && !who.IsAdmin() {
		return models.Post{}, fail(ErrForbidden, "only the author or an admin can delete this post")
	}
	out, err := s.Repo.Delete(ctx, id)
	return out, fromRepo(err, "post %s not found", id)
}
