// Package main seeds a guestbook store with sample books and greetings.
//
// Configuration comes from the same environment variables and .env file as
// the server. Stop the server first: badger and the search index allow only
// one process at a time.
//
// Usage:
//
//	DATA_PATH=~/Guestbook/data go run ./cmd/seed
//	STORE_BACKEND=sqlite go run ./cmd/seed --books 10 --greetings 50
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"

	"github.com/listenupapp/guestbook/internal/config"
	"github.com/listenupapp/guestbook/internal/di/providers"
	"github.com/listenupapp/guestbook/internal/logger"
	"github.com/listenupapp/guestbook/internal/search"
	"github.com/listenupapp/guestbook/internal/service"
)

var (
	bookCount     = flag.Int("books", 5, "Number of books to create")
	greetingCount = flag.Int("greetings", 25, "Greetings to sign per book")
)

var (
	owners = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	places = []string{"Library", "Garage", "Kitchen", "Treehouse", "Workshop", "Garden"}

	openers = []string{"Hello", "Greetings", "Hi there", "Good morning", "Cheers"}
	bodies  = []string{
		"from the other side of town!",
		"what a lovely place.",
		"thanks for having us over.",
		"see you at the next meetup.",
		"the tea was excellent.",
		"I'll be back with snacks.",
	}
)

func main() {
	flag.Parse()

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg := logger.ForEnvironment(cfg.App.Environment, cfg.Logger.Level)

	ctx := context.Background()

	st, location, err := providers.OpenStore(ctx, cfg.Store, lg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	fmt.Printf("Seeding %s store at %s\n", cfg.Store.Backend, location)

	var opts []service.Option
	if cfg.Search.Enabled {
		index, err := search.NewSearchIndex(search.Options{
			DataPath: filepath.Join(cfg.Store.DataPath, "search"),
			Logger:   lg.Logger,
		})
		if err != nil {
			log.Fatalf("Failed to open search index: %v", err)
		}
		defer index.Close()
		opts = append(opts, service.WithSearchIndexer(service.NewSearchService(index, st, lg.Logger)))
	}

	gb := service.NewGuestbookService(st, lg.Logger, opts...)

	for range *bookCount {
		name := fmt.Sprintf("%s's %s", pick(owners), pick(places))
		book, err := gb.CreateBook(ctx, name)
		if err != nil {
			log.Fatalf("Failed to create book: %v", err)
		}

		for range *greetingCount {
			content := fmt.Sprintf("%s %s", pick(openers), pick(bodies))
			if _, _, err := gb.Sign(ctx, book.ID, content); err != nil {
				log.Fatalf("Failed to sign book %d: %v", book.ID, err)
			}
		}

		fmt.Printf("  %-28s %s (%d greetings)\n", book.Name, book.Path(), *greetingCount)
	}

	fmt.Println("\nDone!")
}

func pick(options []string) string {
	return options[rand.IntN(len(options))]
}
