package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

type NewsService struct {
	db *gorm.DB
}

func NewNewsService(db *gorm.DB) *NewsService {
	return &NewsService{db: db}
}

// NewsInput editable fields of an article
type NewsInput struct {
	Title      string
	Summary    string
	Content    string
	CoverImage string
}

func (s *NewsService) List(status, search string, page *pagination.PageParams) ([]models.News, int64, error) {
	var items []models.News
	var total int64

	query := s.db.Model(&models.News{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(page.Scope()).Find(&items).Error
	return items, total, err
}

func (s *NewsService) GetByID(id uint) (*models.News, error) {
	var item models.News
	if err := s.db.Preload("Author").First(&item, id).Error; err != nil {
		return nil, wrapNotFound(err, "news")
	}
	return &item, nil
}

// Create stores a draft with a unique slug derived from the title
func (s *NewsService) Create(authorID uint, in NewsInput) (*models.News, error) {
	slug, err := s.uniqueSlug(in.Title, 0)
	if err != nil {
		return nil, err
	}

	item := &models.News{
		Title:      in.Title,
		Slug:       slug,
		Summary:    in.Summary,
		Content:    in.Content,
		CoverImage: in.CoverImage,
		Status:     models.NewsStatusDraft,
	}
	if authorID != 0 {
		item.AuthorID = &authorID
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *NewsService) Update(id uint, in NewsInput) (*models.News, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Title != item.Title {
		slug, err := s.uniqueSlug(in.Title, id)
		if err != nil {
			return nil, err
		}
		item.Slug = slug
	}
	item.Title = in.Title
	item.Summary = in.Summary
	item.Content = in.Content
	item.CoverImage = in.CoverImage

	if err := s.db.Omit("Author").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// SetPublished publishes or withdraws an article
func (s *NewsService) SetPublished(id uint, publish bool) (*models.News, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if publish {
		now := time.Now()
		updates["status"] = models.NewsStatusPublished
		if item.PublishedAt == nil {
			updates["published_at"] = now
			item.PublishedAt = &now
		}
		item.Status = models.NewsStatusPublished
	} else {
		updates["status"] = models.NewsStatusDraft
		item.Status = models.NewsStatusDraft
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *NewsService) Delete(id uint) error {
	result := s.db.Delete(&models.News{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("news: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (s *NewsService) uniqueSlug(title string, excludeID uint) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", fmt.Errorf("%w: title produces an empty slug", apperrors.ErrValidation)
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		query := s.db.Model(&models.News{}).Where("slug = ?", slug)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lower-cases and joins alphanumeric runs with "-"
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				continue
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
