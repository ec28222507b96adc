// Command seed fills a development database with categories and fake content.
package main

import (
	"flag"
	"log/slog"
	"os"

	"tecnopronto/internal/config"
	"tecnopronto/internal/database"
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxComments := flag.Int("comments", 6, "Maximum comments per published post")
	shouldClean := flag.Bool("clean", false, "Delete users, posts, comments, likes and contact messages first")
	categoriesOnly := flag.Bool("categories-only", false, "Only upsert the built-in categories")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	if cfg.IsProduction() && !*categoriesOnly {
		middleware.Logger.Error("refusing to seed fake content into a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *categoriesOnly {
		categories, err := seed.Categories(db)
		if err != nil {
			middleware.Logger.Error("category seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		middleware.Logger.Info("categories seeded", slog.Int("count", len(categories)))
		return
	}

	res, err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	middleware.Logger.Info("database seeded",
		slog.Int("categories", res.Categories), slog.Int("users", res.Users), slog.Int("posts", res.Posts),
		slog.String("password", seed.DefaultPassword))
}
