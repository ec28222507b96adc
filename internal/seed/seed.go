package seed

import (
	"fmt"
	"log/slog"
	"time"

	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Password123!"

const guestCommentPercent = 40

// Options configures Seed.
type Options struct {
	NumUsers       int
	NumPosts       int
	MaxComments    int
	ShouldClean    bool
	RandSeed       int64
	PublishedRatio float64
	MaxDays        int
	bcryptCost     int
}

// Result counts the rows Seed created.
type Result struct {
	Categories int
	Users      int
	Posts      int
	Comments   int
	Likes      int
}

func (o *Options) defaults() {
	if o.RandSeed == 0 {
		o.RandSeed = time.Now().UnixNano()
	}
	if o.PublishedRatio <= 0 {
		o.PublishedRatio = 0.8
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	if o.bcryptCost == 0 {
		o.bcryptCost = bcrypt.DefaultCost
	}
}

// Seed populates db with fake data. Categories are always upserted.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	opts.defaults()
	faker := gofakeit.New(opts.RandSeed)

	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts), slog.Bool("clean", opts.ShouldClean))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	res := &Result{}

	categories, err := Categories(db)
	if err != nil {
		return nil, err
	}
	res.Categories = len(categories)

	users, err := createUsers(db, faker, opts)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	posts, err := createPosts(db, faker, opts, users, categories)
	if err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = len(posts)

	for _, post := range posts {
		if !post.IsPublished() {
			continue
		}
		n, err := createComments(db, faker, opts, post, users)
		if err != nil {
			return nil, fmt.Errorf("create comments: %w", err)
		}
		res.Comments += n

		n, err = createLikes(db, faker, post, users)
		if err != nil {
			return nil, fmt.Errorf("create likes: %w", err)
		}
		res.Likes += n
	}

	middleware.Logger.Info("seeding completed",
		slog.Int("users", res.Users), slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments), slog.Int("likes", res.Likes))
	return res, nil
}

// clearData removes everything except categories, children first.
func clearData(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for _, model := range []interface{}{
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.ContactMessage{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, faker *gofakeit.Faker, opts Options) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), opts.bcryptCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		username := fmt.Sprintf("%s%d", faker.Username(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hashed),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, faker *gofakeit.Faker, opts Options, users []models.User, categories []models.Category) ([]*models.Post, error) {
	seen := make(map[string]int)
	posts := make([]*models.Post, 0, opts.NumPosts)

	for i := 0; i < opts.NumPosts; i++ {
		title := faker.Sentence(faker.Number(3, 8))
		slug := models.Slugify(title)
		if slug == "" {
			slug = "post"
		}
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}

		createdAt := time.Now().Add(-time.Duration(faker.Number(0, opts.MaxDays*24*60)) * time.Minute)
		post := &models.Post{
			Title:     title,
			Slug:      slug,
			Content:   faker.Paragraph(faker.Number(2, 5), 5, 12, "\n\n"),
			UserID:    users[faker.Number(0, len(users)-1)].ID,
			Status:    models.PostStatusDraft,
			Views:     uint64(faker.Number(0, 5000)),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if len(categories) > 0 && faker.Number(0, 9) > 0 {
			post.CategoryID = &categories[faker.Number(0, len(categories)-1)].ID
		}
		if faker.Float64Range(0, 1) < opts.PublishedRatio {
			post.Publish(createdAt)
		}

		if err := db.Omit(clause.Associations).Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createComments(db *gorm.DB, faker *gofakeit.Faker, opts Options, post *models.Post, users []models.User) (int, error) {
	if opts.MaxComments <= 0 {
		return 0, nil
	}
	count := faker.Number(0, opts.MaxComments)
	for i := 0; i < count; i++ {
		comment := models.Comment{
			PostID:    post.ID,
			Content:   faker.Paragraph(1, faker.Number(1, 3), 10, " "),
			Active:    true,
			CreatedAt: post.CreatedAt.Add(time.Duration(faker.Number(1, 7*24*60)) * time.Minute),
		}
		if faker.Number(1, 100) <= guestCommentPercent {
			comment.GuestName = faker.FirstName()
			if faker.Bool() {
				comment.GuestEmail = faker.Email()
			}
		} else {
			uid := users[faker.Number(0, len(users)-1)].ID
			comment.UserID = &uid
		}
		comment.UpdatedAt = comment.CreatedAt
		if err := db.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return 0, err
		}
		// One in twenty comments is moderated away; Create would apply the column default to false.
		if faker.Number(0, 19) == 0 {
			if err := db.Model(&comment).Update("active", false).Error; err != nil {
				return 0, err
			}
		}
	}
	return count, nil
}

// createLikes has a random subset of users like the post; the unique index keeps it to one row per user.
func createLikes(db *gorm.DB, faker *gofakeit.Faker, post *models.Post, users []models.User) (int, error) {
	created := 0
	for _, user := range users {
		if faker.Number(0, 2) != 0 {
			continue
		}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{UserID: user.ID, PostID: post.ID})
		if result.Error != nil {
			return 0, result.Error
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}
