package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/homematch-ai/recommender/internal/domain/entities"
	"github.com/homematch-ai/recommender/internal/infrastructure/clients/postgres"
	"github.com/homematch-ai/recommender/pkg/config"
)

type seedListing struct {
	address      string
	city         string
	state        string
	zipCode      string
	lat, lng     float64
	price        int64
	beds         int
	baths        float64
	sqft         int
	lotSize      float64
	propertyType string
	yearBuilt    int
	description  string
	schools      []entities.SchoolRecord
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				buyer_listings,
				buyers,
				listings
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	listings := []seedListing{
		{
			address: "1268 Church St", city: "San Francisco", state: "CA", zipCode: "94114",
			lat: 37.7493, lng: -122.4270, price: 1_495_000, beds: 3, baths: 2, sqft: 1680,
			lotSize: 2495, propertyType: "Single Family", yearBuilt: 1912,
			description: "Edwardian charmer in Noe Valley with a sunny south-facing yard, detached garage, and a remodeled kitchen.",
			schools: []entities.SchoolRecord{
				{Rating: 8, DistanceMiles: 0.3},
				{Rating: 7, DistanceMiles: 0.8},
			},
		},
		{
			address: "742 Ellsworth St", city: "San Francisco", state: "CA", zipCode: "94110",
			lat: 37.7351, lng: -122.4152, price: 1_150_000, beds: 2, baths: 1, sqft: 1120,
			lotSize: 1800, propertyType: "Single Family", yearBuilt: 1908,
			description: "Bernal Heights cottage steps from Cortland Avenue shops. Garden with mature lemon tree, EV charger in the carport.",
			schools: []entities.SchoolRecord{
				{Rating: 6, DistanceMiles: 0.4},
			},
		},
		{
			address: "255 Berry St Unit 612", city: "San Francisco", state: "CA", zipCode: "94158",
			lat: 37.7763, lng: -122.3933, price: 998_000, beds: 2, baths: 2, sqft: 1045,
			propertyType: "Condo", yearBuilt: 2006,
			description: "Mission Bay condo with water views, deeded parking, and walkable access to Caltrain and the T line.",
		},
		{
			address: "2467 48th Ave", city: "San Francisco", state: "CA", zipCode: "94116",
			lat: 37.7389, lng: -122.5064, price: 1_295_000, beds: 3, baths: 2, sqft: 1540,
			lotSize: 3000, propertyType: "Single Family", yearBuilt: 1941,
			description: "Outer Sunset home two blocks from Ocean Beach. Large backyard, garage with 240V outlet, updated baths.",
			schools: []entities.SchoolRecord{
				{Rating: 7, DistanceMiles: 0.5},
				{Rating: 9, DistanceMiles: 1.1},
			},
		},
		{
			address: "1820 Oakdale Ave", city: "San Francisco", state: "CA", zipCode: "94124",
			lat: 37.7326, lng: -122.3937, price: 849_000, beds: 3, baths: 1.5, sqft: 1380,
			lotSize: 2600, propertyType: "Single Family", yearBuilt: 1952,
			description: "Bayview fixer with good bones, a deep lot, and room to expand. Sold as-is.",
		},
		{
			address: "88 King St Unit 1109", city: "San Francisco", state: "CA", zipCode: "94107",
			lat: 37.7811, lng: -122.3896, price: 1_380_000, beds: 2, baths: 2, sqft: 1190,
			propertyType: "Condo", yearBuilt: 2000,
			description: "South Beach high-rise with ballpark views, doorman, gym, and one parking space with EV charging.",
		},
	}

	for _, l := range listings {
		coords, _ := json.Marshal(map[string]float64{"lat": l.lat, "lng": l.lng})
		schools, _ := json.Marshal(l.schools)

		_, err := db.ExecContext(ctx, `
			INSERT INTO listings (
				id, address, city, state, zip_code, coordinates,
				listing_price, bedrooms, bathrooms, square_feet, lot_size,
				property_type, year_built, description, schools, data_source,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
			ON CONFLICT (address, city) DO NOTHING`,
			uuid.NewString(), l.address, l.city, l.state, l.zipCode, coords,
			l.price, l.beds, l.baths, l.sqft, l.lotSize,
			l.propertyType, l.yearBuilt, l.description, schools, "seed",
		)
		if err != nil {
			log.Printf("Failed to insert listing %s: %v", l.address, err)
		}
	}

	log.Printf("Seeding completed with %d San Francisco listings", len(listings))
}
