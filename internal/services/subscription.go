package services

import (
	"context"
	"errors"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
)

// SubscriptionRepository defines persistence operations for the
// follower/followee relation.
type SubscriptionRepository interface {
	Exists(ctx context.Context, userID, followeeID int) (bool, error)
	Create(ctx context.Context, userID, followeeID int) error
	Delete(ctx context.Context, userID, followeeID int) error
	ListFollowees(ctx context.Context, userID, offset, limit int) ([]int, int, error)
}

// AuthorRecipeLister loads short recipe projections per author for
// subscription responses.
type AuthorRecipeLister interface {
	ListShortByAuthors(ctx context.Context, authorIDs []int) (map[int][]types.RecipeShort, error)
}

// NoRecipesLimit disables truncation of the recipe list in subscription
// projections.
const NoRecipesLimit = -1

// SubscriptionService encapsulates the follow/unfollow use-cases.
type SubscriptionService struct {
	subs    SubscriptionRepository
	users   UserRepository
	recipes AuthorRecipeLister
}

func NewSubscriptionService(subs SubscriptionRepository, users UserRepository, recipes AuthorRecipeLister) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, recipes: recipes}
}

// Subscribe creates the (follower, followee) pair and returns the followee
// projected with their recipes. Following yourself or an existing followee
// fails with a validation error; an unknown followee with ErrNotFound.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followeeID, recipesLimit int) (types.UserWithRecipes, error) {
	followee, err := s.users.GetByID(ctx, followeeID)
	if err != nil {
		return types.UserWithRecipes{}, err
	}

	if followerID == followeeID {
		return types.UserWithRecipes{}, FieldErrors{"errors": "cannot subscribe to yourself"}
	}

	exists, err := s.subs.Exists(ctx, followerID, followeeID)
	if err != nil {
		return types.UserWithRecipes{}, err
	}
	if exists {
		return types.UserWithRecipes{}, FieldErrors{"errors": "already subscribed to this user"}
	}

	if err := s.subs.Create(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return types.UserWithRecipes{}, FieldErrors{"errors": "already subscribed to this user"}
		}
		return types.UserWithRecipes{}, err
	}

	projections, err := s.project(ctx, []types.User{followee}, recipesLimit)
	if err != nil {
		return types.UserWithRecipes{}, err
	}
	return projections[0], nil
}

// Unsubscribe removes the (follower, followee) pair. A missing pair fails
// with a validation error; an unknown followee with ErrNotFound.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followeeID int) error {
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return FieldErrors{"errors": "not subscribed to this user"}
		}
		return err
	}
	return nil
}

// List returns a page of the user's followees, each projected with recipes,
// plus the total followee count.
func (s *SubscriptionService) List(ctx context.Context, userID, recipesLimit, offset, limit int) ([]types.UserWithRecipes, int, error) {
	followeeIDs, total, err := s.subs.ListFollowees(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.users.GetByIDs(ctx, followeeIDs)
	if err != nil {
		return nil, 0, err
	}
	// Restore subscription order.
	byID := make(map[int]types.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	ordered := make([]types.User, 0, len(followeeIDs))
	for _, id := range followeeIDs {
		if user, ok := byID[id]; ok {
			ordered = append(ordered, user)
		}
	}

	projections, err := s.project(ctx, ordered, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return projections, total, nil
}

// project builds followee projections: recipes (optionally truncated), the
// total recipe count and the always-true subscription flag.
func (s *SubscriptionService) project(ctx context.Context, followees []types.User, recipesLimit int) ([]types.UserWithRecipes, error) {
	ids := make([]int, len(followees))
	for i, followee := range followees {
		ids[i] = followee.ID
	}

	recipesByAuthor, err := s.recipes.ListShortByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	projections := make([]types.UserWithRecipes, 0, len(followees))
	for _, followee := range followees {
		recipes := recipesByAuthor[followee.ID]
		count := len(recipes)
		if recipesLimit >= 0 && len(recipes) > recipesLimit {
			recipes = recipes[:recipesLimit]
		}
		if recipes == nil {
			recipes = []types.RecipeShort{}
		}
		projections = append(projections, types.UserWithRecipes{
			UserProfile:  followee.Profile(true),
			Recipes:      recipes,
			RecipesCount: count,
		})
	}
	return projections, nil
}
