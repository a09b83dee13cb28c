// Command seed fills the wall's data directory with demo posts and likes.
// Intended for development and manual testing only.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"anonwall/internal/config"
	"anonwall/internal/identity"
	"anonwall/internal/storage"
	"anonwall/internal/wall"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	posts := flag.Int("posts", 25, "number of posts to create")
	authors := flag.Int("authors", 8, "number of distinct anonymous authors")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())
	svc := wall.NewService(store, wall.NewFilter(cfg.SensitiveWordList()...))
	ctx := context.Background()

	ids := make([]string, *authors)
	for i := range ids {
		ids[i] = identity.NewToken()
	}

	created := 0
	for i := 0; i < *posts; i++ {
		author := ids[rand.Intn(len(ids))]
		post, err := svc.Publish(ctx, author, gofakeit.HipsterSentence(rand.Intn(12)+3))
		if err != nil {
			log.Printf("skipping post: %v", err)
			continue
		}
		created++

		// A random subset of the other identities likes each post.
		for _, id := range ids {
			if id != author && rand.Intn(3) == 0 {
				if _, err := svc.SetLikeState(ctx, post.ID, id, true); err != nil {
					log.Printf("like failed: %v", err)
				}
			}
		}
	}

	log.Printf("Seeded %d posts into %s", created, cfg.DataDir)
}
