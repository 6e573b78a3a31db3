package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"guildhall/internal/models"
	"guildhall/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoOptions controls how much demo data gets generated.
type DemoOptions struct {
	NumUsers   int
	NumThreads int
	NumNews    int
	NumEvents  int
}

var playStyles = []string{"casual", "competitive", "completionist", "speedrunner"}

var gameTitles = []string{
	"Factorio", "Stardew Valley", "Deep Rock Galactic", "Hades", "Celeste",
	"Valheim", "Terraria", "Rimworld", "Slay the Spire", "Rocket League",
	"Counter-Strike 2", "Baldur's Gate 3", "Elden Ring", "Satisfactory",
}

// Factory builds demo entities and persists them.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// pastTime returns a timestamp up to maxDays in the past.
func (f *Factory) pastTime(maxDays int) time.Time {
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// CreateUser persists a demo member account.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Demo!Passw0rd123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	games := make([]string, 0, 3)
	for _, i := range f.rng.Perm(len(gameTitles))[:3] {
		games = append(games, gameTitles[i])
	}

	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Gamertag(), gofakeit.Number(10, 99)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Role:     models.RoleMember,
		Bio:      gofakeit.Sentence(12),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		SteamID:  fmt.Sprintf("7656119%d", gofakeit.Number(1000000000, 9999999999)),
		Settings: models.UserSettings{
			Theme:              "dark",
			EmailNotifications: gofakeit.Bool(),
			ForumNotifications: true,
			EventReminders:     gofakeit.Bool(),
		},
		GamingProfile: models.GamingProfile{
			FavoriteGames: games,
			Hardware:      gofakeit.ProductName(),
			PlayStyle:     playStyles[f.rng.Intn(len(playStyles))],
		},
		CreatedAt: f.pastTime(180),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, f.db.Create(user).Error
}

// CreateThread persists a demo thread with a handful of posts and votes.
func (f *Factory) CreateThread(category *models.Category, users []*models.User) (*models.Thread, error) {
	author := users[f.rng.Intn(len(users))]
	title := gofakeit.Sentence(f.rng.Intn(5) + 4)
	thread := &models.Thread{
		CategoryID: category.ID,
		AuthorID:   author.ID,
		Title:      title,
		Slug:       slug.Make(title),
		Body:       gofakeit.Paragraph(2, 4, 8, "\n\n"),
		CreatedAt:  f.pastTime(90),
	}
	if err := f.db.Create(thread).Error; err != nil {
		return nil, err
	}

	numPosts := f.rng.Intn(6)
	for i := 0; i < numPosts; i++ {
		post := &models.Post{
			ThreadID:  thread.ID,
			AuthorID:  users[f.rng.Intn(len(users))].ID,
			Body:      gofakeit.Paragraph(1, 3, 6, "\n"),
			CreatedAt: thread.CreatedAt.Add(time.Duration(i+1) * time.Hour),
		}
		if err := f.db.Create(post).Error; err != nil {
			return nil, err
		}

		if f.rng.Intn(3) == 0 {
			comment := &models.Comment{
				PostID:   post.ID,
				AuthorID: users[f.rng.Intn(len(users))].ID,
				Body:     gofakeit.Sentence(8),
			}
			if err := f.db.Create(comment).Error; err != nil {
				return nil, err
			}
		}
	}

	// A few votes, mostly positive.
	for _, voter := range users[:min(len(users), f.rng.Intn(5))] {
		value := 1
		if f.rng.Intn(4) == 0 {
			value = -1
		}
		vote := &models.ThreadVote{UserID: voter.ID, ThreadID: thread.ID, Value: value}
		if err := f.db.Create(vote).Error; err != nil {
			return nil, err
		}
	}

	return thread, nil
}

// CreateNewsArticle persists a demo published article.
func (f *Factory) CreateNewsArticle(author *models.User) (*models.NewsArticle, error) {
	title := gofakeit.Sentence(f.rng.Intn(4) + 3)
	published := f.pastTime(60)
	article := &models.NewsArticle{
		AuthorID:    author.ID,
		Title:       title,
		Slug:        slug.Make(title),
		Summary:     gofakeit.Sentence(14),
		Body:        gofakeit.Paragraph(3, 5, 10, "\n\n"),
		IsPublished: true,
		PublishedAt: &published,
	}
	return article, f.db.Create(article).Error
}

// CreateEvent persists a demo upcoming event.
func (f *Factory) CreateEvent(creator *models.User) (*models.Event, error) {
	title := fmt.Sprintf("%s Night", gameTitles[f.rng.Intn(len(gameTitles))])
	starts := time.Now().Add(time.Duration(f.rng.Intn(30)+1) * 24 * time.Hour)
	deadline := starts.Add(-12 * time.Hour)
	event := &models.Event{
		Title:                title,
		Slug:                 fmt.Sprintf("%s-%d", slug.Make(title), gofakeit.Number(100, 999)),
		Description:          gofakeit.Paragraph(1, 3, 8, "\n"),
		StartsAt:             starts,
		RegistrationDeadline: &deadline,
		MaxParticipants:      f.rng.Intn(3) * 16, // 0 means unlimited
		CreatedByID:          creator.ID,
	}
	return event, f.db.Create(event).Error
}

// Demo fills the database with generated users, threads, news, and events.
// EnsureDefaults must have run first so categories and tags exist.
func Demo(db *gorm.DB, opts DemoOptions) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumThreads <= 0 {
		opts.NumThreads = 40
	}
	if opts.NumNews <= 0 {
		opts.NumNews = 6
	}
	if opts.NumEvents <= 0 {
		opts.NumEvents = 4
	}

	f := NewFactory(db)

	var staff models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&staff).Error; err != nil {
		return fmt.Errorf("demo seeding needs an admin account: %w", err)
	}

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return fmt.Errorf("demo seeding needs categories, run EnsureDefaults first")
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d demo users", len(users))

	for i := 0; i < opts.NumThreads; i++ {
		category := &categories[f.rng.Intn(len(categories))]
		if _, err := f.CreateThread(category, users); err != nil {
			return fmt.Errorf("create thread: %w", err)
		}
	}
	log.Printf("seeded %d demo threads", opts.NumThreads)

	for i := 0; i < opts.NumNews; i++ {
		if _, err := f.CreateNewsArticle(&staff); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
	}
	for i := 0; i < opts.NumEvents; i++ {
		if _, err := f.CreateEvent(&staff); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
	}
	log.Printf("seeded %d articles and %d events", opts.NumNews, opts.NumEvents)

	return nil
}
