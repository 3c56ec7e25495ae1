package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const migrationsDir = "db/migrations"

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

func main() {
	flag.Parse()
	name := strings.ToLower(flag.Arg(0))
	if name == "" {
		log.Fatal("usage: migrate-create <name>")
	}
	if !namePattern.MatchString(name) {
		log.Fatal("migration name must be lowercase letters, digits and underscores")
	}

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}

	stamp := time.Now().UTC().Format("20060102150405")
	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.%s.sql", stamp, name, direction))
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("refusing to overwrite %s", path)
		}
		header := fmt.Sprintf("-- %s: %s\n", direction, name)
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("created %s", path)
	}
}
