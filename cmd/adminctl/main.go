// Command adminctl creates an admin user or resets its password.
//
//	echo 'long-password' | adminctl -username alice
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/socialoura/spotyz/internal/config"
	"github.com/socialoura/spotyz/internal/database"
	"github.com/socialoura/spotyz/internal/repository"
	"github.com/socialoura/spotyz/internal/service"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password; read from stdin when empty")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		log.Fatal("-username is required")
	}
	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %v", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.PostgresURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	admin, err := repository.NewAdminUserRepository(db).Upsert(ctx, strings.TrimSpace(*username), hash)
	if err != nil {
		log.Fatalf("save admin: %v", err)
	}
	fmt.Printf("admin %q saved (id %d)\n", admin.Username, admin.ID)
}
