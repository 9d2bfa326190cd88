// Seeds demo rooms straight through the repository, for local runs and the
// inspector. Room creation is not part of the public API, so this is the
// only way to get data into a fresh store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/BurkushTetiana/itmarathon/domain"
	"github.com/BurkushTetiana/itmarathon/repositories"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	Rooms          int    `envconfig:"SEED_ROOMS" default:"2"`
	UsersPerRoom   int    `envconfig:"SEED_USERS_PER_ROOM" default:"4"`
}

var firstNames = []string{"Alice", "Bob", "Clara", "David", "Eva", "Felix", "Grace", "Hugo"}
var lastNames = []string{"Martin", "Durand", "Bernard", "Petit", "Robert", "Richard", "Moreau", "Laurent"}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLogger(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "database opening failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := repositories.NewRoomRepository(db, logger)
	ctx := context.Background()

	fmt.Printf("Seeding %d rooms with %d users each...\n", cfg.Rooms, cfg.UsersPerRoom)

	for i := 0; i < cfg.Rooms; i++ {
		room := buildRoom(i, cfg.UsersPerRoom)
		created, err := repo.Create(ctx, room)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seeding room %s failed: %v\n", room.Code, err)
			os.Exit(1)
		}

		fmt.Printf("\nRoom %s (%s)\n", created.Code, created.Name)
		for _, u := range created.Users {
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			fmt.Printf("  [%s] %s %s (id=%d) code=%s\n", role, u.FirstName, u.LastName, u.ID, u.UserCode)
		}
	}

	fmt.Println("\nDone. Point the API at the same BADGER_FILEPATH to use these rooms.")
}

func buildRoom(n, userCount int) domain.Room {
	users := make([]domain.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		users = append(users, domain.User{
			ID:        uint64(i + 1),
			UserCode:  uuid.NewString(),
			FirstName: firstNames[i%len(firstNames)],
			LastName:  lastNames[i%len(lastNames)],
			IsAdmin:   i == 0, // first user administers the room
		})
	}
	return domain.Room{
		Code:  domain.RoomCode(fmt.Sprintf("DEMO-%d-%s", n+1, uuid.NewString()[:8])),
		Name:  fmt.Sprintf("Demo room %d", n+1),
		Users: users,
	}
}
