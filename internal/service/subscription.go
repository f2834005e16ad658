package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// SubscriptionService owns the follower/followed membership and the
// followed-profile shaping.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe creates the follow row and returns the followed user's profile
// with their recipes. recipesLimit caps the embedded recipes; zero means
// no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followedID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if followerID == followedID {
		return nil, ErrSelfFollow
	}
	followed, err := s.findUser(ctx, followedID)
	if err != nil {
		return nil, err
	}

	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("subscription %w", ErrAlreadyExists)
		}
		return nil, err
	}

	return s.profile(ctx, followed, recipesLimit, true)
}

// Unsubscribe deletes the follow row; absent rows are an error.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followedID uuid.UUID) error {
	if _, err := s.findUser(ctx, followedID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// List returns the page of followed-user profiles for the subscriber, each
// shaped like the Subscribe response.
func (s *SubscriptionService) List(ctx context.Context, followerID uuid.UUID, limit, offset, recipesLimit int) ([]*types.SubscriptionResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var follows []models.Follow
	if err := q.Preload("Followed").Find(&follows).Error; err != nil {
		return nil, err
	}

	out := make([]*types.SubscriptionResponse, 0, len(follows))
	for i := range follows {
		resp, err := s.profile(ctx, &follows[i].Followed, recipesLimit, true)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Profile shapes any user the same way as a subscription entry, computing
// is_subscribed for the viewer (nil viewer means anonymous).
func (s *SubscriptionService) Profile(ctx context.Context, viewer *uuid.UUID, userID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscribed := false
	if viewer != nil {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND followed_id = ?", *viewer, userID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		subscribed = count > 0
	}
	return s.profile(ctx, user, recipesLimit, subscribed)
}

func (s *SubscriptionService) profile(ctx context.Context, user *models.User, recipesLimit int, subscribed bool) (*types.SubscriptionResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", user.ID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}

	var total int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", user.ID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	resp := &types.SubscriptionResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
		Recipes:      make([]types.ShortRecipe, 0, len(recipes)),
		RecipesCount: total,
	}
	for _, r := range recipes {
		resp.Recipes = append(resp.Recipes, types.ShortRecipe{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return resp, nil
}

func (s *SubscriptionService) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}
