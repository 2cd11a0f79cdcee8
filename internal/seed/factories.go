package seed

import (
	"fmt"
	"strings"
	"time"

	"croctop/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/datatypes"
)

var (
	units = []string{"g", "kg", "ml", "cl", "l", "pièces", "c. à soupe", "c. à café", "pincée"}

	steps = []string{
		"Préchauffer le four à 180°C",
		"Éplucher et couper les légumes",
		"Mélanger les ingrédients secs",
		"Incorporer les oeufs un à un",
		"Laisser reposer 30 minutes",
		"Faire revenir à feu moyen",
		"Assaisonner selon le goût",
		"Enfourner et surveiller la cuisson",
		"Dresser et servir chaud",
	}
)

// Factory builds seed entities from a deterministic faker.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewFactory returns a Factory. A zero seed draws one from the clock.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed), now: time.Now()}
}

// BuildUser returns an unsaved user with the given password digest.
// The index keeps usernames and emails unique within one run.
func (f *Factory) BuildUser(index int, digest string) *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s%d", sanitize(first), index))
	birthday := f.faker.DateRange(f.now.AddDate(-70, 0, 0), f.now.AddDate(-16, 0, 0))

	return &models.User{
		Firstname:     first,
		Lastname:      last,
		Username:      username,
		Email:         username + "@croctop.test",
		Password:      digest,
		Birthday:      &birthday,
		Bio:           f.faker.Sentence(10),
		PictureAvatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Status:        models.StatusInactive,
		Role:          models.RoleNormal,
	}
}

// BuildPost returns an unsaved recipe for author.
func (f *Factory) BuildPost(authorID uint) *models.Post {
	category := models.PostCategories[f.faker.Number(0, len(models.PostCategories)-1)]

	allergens := []string{}
	for _, a := range models.Allergens {
		if f.faker.Number(1, 5) == 1 {
			allergens = append(allergens, a)
		}
	}

	ingredients := make([]models.Ingredient, f.faker.Number(2, 6))
	for i := range ingredients {
		name := f.faker.Vegetable()
		if i%2 == 1 {
			name = f.faker.Fruit()
		}
		ingredients[i] = models.Ingredient{
			Name:     name,
			Quantity: fmt.Sprintf("%d", f.faker.Number(1, 500)),
			Unit:     units[f.faker.Number(0, len(units)-1)],
		}
	}

	prepSteps := make([]string, f.faker.Number(2, 5))
	for i := range prepSteps {
		prepSteps[i] = steps[f.faker.Number(0, len(steps)-1)]
	}

	return &models.Post{
		UserID:      authorID,
		Title:       titleFor(f.faker, category),
		Photos:      datatypes.NewJSONSlice([]string{fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())}),
		Category:    category,
		PrepTime:    f.faker.Number(5, 60),
		CookTime:    f.faker.Number(0, 120),
		Allergens:   datatypes.NewJSONSlice(allergens),
		PrepSteps:   datatypes.NewJSONSlice(prepSteps),
		Ingredients: datatypes.NewJSONSlice(ingredients),
	}
}

// BuildComment returns comment text.
func (f *Factory) BuildComment() string {
	return f.faker.Sentence(f.faker.Number(3, 12))
}

// Pick returns n distinct indexes in [0, size), skipping exclude.
func (f *Factory) Pick(size, n, exclude int) []int {
	picked := make([]int, 0, n)
	for _, i := range f.faker.Rand.Perm(size) {
		if len(picked) == n {
			break
		}
		if i == exclude {
			continue
		}
		picked = append(picked, i)
	}
	return picked
}

func titleFor(faker *gofakeit.Faker, category string) string {
	switch category {
	case "Dessert":
		return faker.Dessert()
	case "Snack", "Apéritif":
		return faker.Snack()
	case "Boisson":
		return faker.BeerName()
	default:
		return faker.Dinner()
	}
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "chef"
	}
	return b.String()
}
