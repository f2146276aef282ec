package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"makerspace/internal/seed"
	"makerspace/internal/store"
	"makerspace/pkg/config"
	"makerspace/pkg/db"
	"makerspace/pkg/logging"
)

func main() {
	withSeed := flag.Bool("seed", false, "load the demo catalogue after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// This uses DIRECT_URL if set; poolers break the migrator's advisory lock.
	if err := db.Migrate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}
	v, dirty, err := db.MigrationVersion(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read version: %v\n", err)
		os.Exit(1)
	}

	// Sanity check the runtime connection (DATABASE_URL if set). DSNs are
	// never printed.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *withSeed {
		st := store.Postgres(pool)
		log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		err := seed.Demo(context.Background(), seed.Stores{Machines: st.Machines, Courses: st.Courses, Users: st.Users},
			seed.Admin{Email: cfg.SeedAdminEmail, Password: cfg.SeedAdminPassword}, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("migrations applied (version %d, dirty=%v)\n", v, dirty)
}
