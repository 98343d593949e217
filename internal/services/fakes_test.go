package services

import (
	"context"
	"sort"
	"strings"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
	for _, user := range users {
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []int) ([]types.User, error) {
	users := make([]types.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	users := make([]types.User, 0, limit)
	for i := offset; i < len(ids) && len(users) < limit; i++ {
		users = append(users, r.users[ids[i]])
	}
	return users, len(ids), nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

type subscriptionPair struct {
	userID     int
	followeeID int
}

type fakeSubscriptionRepo struct {
	pairs []subscriptionPair
}

func (r *fakeSubscriptionRepo) Exists(ctx context.Context, userID, followeeID int) (bool, error) {
	for _, pair := range r.pairs {
		if pair.userID == userID && pair.followeeID == followeeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, userID, followeeID int) error {
	exists, _ := r.Exists(ctx, userID, followeeID)
	if exists {
		return store.ErrAlreadyExists
	}
	r.pairs = append(r.pairs, subscriptionPair{userID: userID, followeeID: followeeID})
	return nil
}

func (r *fakeSubscriptionRepo) Delete(ctx context.Context, userID, followeeID int) error {
	for i, pair := range r.pairs {
		if pair.userID == userID && pair.followeeID == followeeID {
			r.pairs = append(r.pairs[:i], r.pairs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeSubscriptionRepo) ListFollowees(ctx context.Context, userID, offset, limit int) ([]int, int, error) {
	all := make([]int, 0)
	for _, pair := range r.pairs {
		if pair.userID == userID {
			all = append(all, pair.followeeID)
		}
	}

	ids := make([]int, 0, limit)
	for i := offset; i < len(all) && len(ids) < limit; i++ {
		ids = append(ids, all[i])
	}
	return ids, len(all), nil
}

func (r *fakeSubscriptionRepo) FolloweeSet(ctx context.Context, userID int) (map[int]bool, error) {
	set := map[int]bool{}
	for _, pair := range r.pairs {
		if pair.userID == userID {
			set[pair.followeeID] = true
		}
	}
	return set, nil
}

type fakeCatalogRepo struct {
	ingredients map[int]types.Ingredient
	tags        map[int]types.Tag
	nextID      int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		ingredients: map[int]types.Ingredient{},
		tags:        map[int]types.Tag{},
		nextID:      1,
	}
}

func (r *fakeCatalogRepo) addIngredient(name, unit string) types.Ingredient {
	ingredient := types.Ingredient{ID: r.nextID, Name: name, MeasurementUnit: unit}
	r.nextID++
	r.ingredients[ingredient.ID] = ingredient
	return ingredient
}

func (r *fakeCatalogRepo) addTag(name, slug string) types.Tag {
	tag := types.Tag{ID: r.nextID, Name: name, Slug: slug}
	r.nextID++
	r.tags[tag.ID] = tag
	return tag
}

func (r *fakeCatalogRepo) ListIngredients(ctx context.Context, namePrefix string) ([]types.Ingredient, error) {
	ids := make([]int, 0, len(r.ingredients))
	for id := range r.ingredients {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]types.Ingredient, 0, len(ids))
	for _, id := range ids {
		ingredient := r.ingredients[id]
		if namePrefix == "" || strings.HasPrefix(strings.ToLower(ingredient.Name), strings.ToLower(namePrefix)) {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetIngredient(ctx context.Context, id int) (types.Ingredient, error) {
	ingredient, ok := r.ingredients[id]
	if !ok {
		return types.Ingredient{}, store.ErrNotFound
	}
	return ingredient, nil
}

func (r *fakeCatalogRepo) CreateIngredient(ctx context.Context, name, unit string) (types.Ingredient, error) {
	for _, ingredient := range r.ingredients {
		if ingredient.Name == name && ingredient.MeasurementUnit == unit {
			return types.Ingredient{}, store.ErrAlreadyExists
		}
	}
	return r.addIngredient(name, unit), nil
}

func (r *fakeCatalogRepo) ExistingIngredientIDs(ctx context.Context, ids []int) ([]int, error) {
	existing := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.ingredients[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (r *fakeCatalogRepo) ListTags(ctx context.Context) ([]types.Tag, error) {
	ids := make([]int, 0, len(r.tags))
	for id := range r.tags {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]types.Tag, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.tags[id])
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetTag(ctx context.Context, id int) (types.Tag, error) {
	tag, ok := r.tags[id]
	if !ok {
		return types.Tag{}, store.ErrNotFound
	}
	return tag, nil
}

func (r *fakeCatalogRepo) CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error) {
	for _, existing := range r.tags {
		if existing.Name == tag.Name || existing.Slug == tag.Slug {
			return types.Tag{}, store.ErrAlreadyExists
		}
	}
	tag.ID = r.nextID
	r.nextID++
	r.tags[tag.ID] = tag
	return tag, nil
}

func (r *fakeCatalogRepo) ExistingTagIDs(ctx context.Context, ids []int) ([]int, error) {
	existing := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.tags[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type fakeRecipeRepo struct {
	recipes map[int]types.Recipe
	nextID  int
}

func newFakeRecipeRepo(recipes ...types.Recipe) *fakeRecipeRepo {
	repo := &fakeRecipeRepo{recipes: map[int]types.Recipe{}, nextID: 1}
	for _, recipe := range recipes {
		if recipe.ID >= repo.nextID {
			repo.nextID = recipe.ID + 1
		}
		repo.recipes[recipe.ID] = recipe
	}
	return repo
}

func (r *fakeRecipeRepo) List(ctx context.Context, filter store.RecipeFilter, offset, limit int) ([]types.Recipe, int, error) {
	ids := make([]int, 0, len(r.recipes))
	for id := range r.recipes {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	out := make([]types.Recipe, 0, limit)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.recipes[ids[i]])
	}
	return out, len(ids), nil
}

func (r *fakeRecipeRepo) Get(ctx context.Context, id, viewerID int) (types.Recipe, error) {
	recipe, ok := r.recipes[id]
	if !ok {
		return types.Recipe{}, store.ErrNotFound
	}
	return recipe, nil
}

func (r *fakeRecipeRepo) Create(ctx context.Context, authorID int, input types.RecipeInput, imageKey string) (int, error) {
	id := r.nextID
	r.nextID++
	r.recipes[id] = types.Recipe{
		ID:          id,
		Name:        input.Name,
		Text:        input.Text,
		Image:       imageKey,
		CookingTime: input.CookingTime,
		Author:      types.UserProfile{ID: authorID},
	}
	return id, nil
}

func (r *fakeRecipeRepo) Update(ctx context.Context, id int, input types.RecipeInput, imageKey string) error {
	recipe, ok := r.recipes[id]
	if !ok {
		return store.ErrNotFound
	}
	recipe.Name = input.Name
	recipe.Text = input.Text
	recipe.CookingTime = input.CookingTime
	if imageKey != "" {
		recipe.Image = imageKey
	}
	r.recipes[id] = recipe
	return nil
}

func (r *fakeRecipeRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.recipes[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *fakeRecipeRepo) GetShort(ctx context.Context, id int) (types.RecipeShort, error) {
	recipe, ok := r.recipes[id]
	if !ok {
		return types.RecipeShort{}, store.ErrNotFound
	}
	return recipe.Short(), nil
}

func (r *fakeRecipeRepo) ListShortByAuthors(ctx context.Context, authorIDs []int) (map[int][]types.RecipeShort, error) {
	byAuthor := map[int][]types.RecipeShort{}
	ids := make([]int, 0, len(r.recipes))
	for id := range r.recipes {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	wanted := map[int]bool{}
	for _, authorID := range authorIDs {
		wanted[authorID] = true
	}
	for _, id := range ids {
		recipe := r.recipes[id]
		if wanted[recipe.Author.ID] {
			byAuthor[recipe.Author.ID] = append(byAuthor[recipe.Author.ID], recipe.Short())
		}
	}
	return byAuthor, nil
}

type fakeRelationRepo struct {
	rows map[subscriptionPair]bool
}

func newFakeRelationRepo() *fakeRelationRepo {
	return &fakeRelationRepo{rows: map[subscriptionPair]bool{}}
}

func (r *fakeRelationRepo) Exists(ctx context.Context, userID, recipeID int) (bool, error) {
	return r.rows[subscriptionPair{userID, recipeID}], nil
}

func (r *fakeRelationRepo) Create(ctx context.Context, userID, recipeID int) error {
	key := subscriptionPair{userID, recipeID}
	if r.rows[key] {
		return store.ErrAlreadyExists
	}
	r.rows[key] = true
	return nil
}

func (r *fakeRelationRepo) Delete(ctx context.Context, userID, recipeID int) error {
	key := subscriptionPair{userID, recipeID}
	if !r.rows[key] {
		return store.ErrNotFound
	}
	delete(r.rows, key)
	return nil
}

type fakeImageStore struct {
	saved int
}

func (s *fakeImageStore) Save(ctx context.Context, encoded string) (string, error) {
	s.saved++
	return "img/2026/01/01/test.png", nil
}
