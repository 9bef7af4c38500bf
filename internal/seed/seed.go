package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	NumFollows  int
	ShouldClean bool
	SkipBcrypt  bool
	MaxDays     int
}

// Seed populates the database with demo data: built-in groups, users,
// posts spread over time, comments, and a follow mesh.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	if err := Groups(db); err != nil {
		return fmt.Errorf("failed to seed groups: %w", err)
	}

	var groups []models.Group
	if err := db.Find(&groups).Error; err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rand.Intn(len(users))]
		post := f.BuildPost(author)
		// roughly two thirds of posts land in a group
		if len(groups) > 0 && f.rand.Intn(3) > 0 {
			groupID := groups[f.rand.Intn(len(groups))].ID
			post.GroupID = &groupID
		}
		posts = append(posts, post)
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	for i := 0; i < opts.NumComments && len(posts) > 0; i++ {
		author := users[f.rand.Intn(len(users))]
		post := posts[f.rand.Intn(len(posts))]
		if _, err := f.CreateComment(author, post); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	for i := 0; i < opts.NumFollows; i++ {
		user := users[f.rand.Intn(len(users))]
		author := users[f.rand.Intn(len(users))]
		if err := f.CreateFollow(user, author); err != nil {
			return fmt.Errorf("failed to create follow: %w", err)
		}
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, follows, posts, groups, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}
