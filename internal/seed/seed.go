// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder populates the database with generated users, posts and engagement.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes seeded data. Order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("cleared existing data")
	return nil
}

// SeedUsers creates n users. All seeded users share the password "password123".
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Password: string(hash),
		})
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the given users with a realistic
// created_at spread over the last 90 days.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := &models.Post{
			Title:     gofakeit.Sentence(5),
			Summary:   gofakeit.Sentence(12),
			Content:   gofakeit.Paragraph(2, 4, 8, "\n\n"),
			ImagePath: fmt.Sprintf("uploads/%s.jpg", gofakeit.UUID()),
			UserID:    author.ID,
		}
		daysBack := s.rand.Intn(90)
		hoursBack := s.rand.Intn(24)
		post.CreatedAt = time.Now().
			Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
		posts = append(posts, post)
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))
	return posts, nil
}

// SeedEngagement sprinkles likes and comments over the posts.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	var likes []*models.Like
	var comments []*models.Comment

	for _, post := range posts {
		for _, user := range users {
			if s.rand.Intn(100) < 20 {
				likes = append(likes, &models.Like{UserID: user.ID, PostID: post.ID})
			}
			if s.rand.Intn(100) < 5 {
				comments = append(comments, &models.Comment{
					Text:     gofakeit.Sentence(8),
					UserName: user.Username,
					UserID:   user.ID,
					PostID:   post.ID,
				})
			}
		}
	}

	if len(likes) > 0 {
		if err := s.db.CreateInBatches(&likes, 500).Error; err != nil {
			return fmt.Errorf("seeding likes: %w", err)
		}
	}
	if len(comments) > 0 {
		if err := s.db.CreateInBatches(&comments, 500).Error; err != nil {
			return fmt.Errorf("seeding comments: %w", err)
		}
	}
	log.Printf("seeded %d likes, %d comments", len(likes), len(comments))
	return nil
}
