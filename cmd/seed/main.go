// Command main runs the database seeder for Guildhall.
package main

import (
	"flag"
	"log"

	"guildhall/internal/bootstrap"
	"guildhall/internal/config"
	"guildhall/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	numThreads := flag.Int("threads", 40, "Number of demo threads to create")
	numNews := flag.Int("news", 6, "Number of demo news articles to create")
	numEvents := flag.Int("events", 4, "Number of demo events to create")
	demo := flag.Bool("demo", true, "Generate demo data on top of the built-ins")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{EnsureDefaults: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if *demo {
		err := seed.Demo(db, seed.DemoOptions{
			NumUsers:   *numUsers,
			NumThreads: *numThreads,
			NumNews:    *numNews,
			NumEvents:  *numEvents,
		})
		if err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
	}

	log.Println("Seeding complete.")
	log.Println("All demo users have the password: Demo!Passw0rd123")
}
