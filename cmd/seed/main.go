package main

import (
	"fmt"
	"log"

	"github.com/farmavida/farmavida-backend/config"
	"github.com/farmavida/farmavida-backend/internal/app/model"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/internal/db"
	"github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	products := catalogProducts()
	created := 0
	for i := range products {
		if _, err := productRepo.FindBySlug(products[i].Slug); err == nil {
			continue // already seeded
		}
		if err := productRepo.Create(&products[i]); err != nil {
			log.Fatal("Failed to seed product:", err)
		}
		created++
	}

	fmt.Printf("Seed completed: %d products created, %d already present\n", created, len(products)-created)
}

func catalogProducts() []model.Product {
	return []model.Product{
		{
			Name:          "Paracetamol 500mg",
			Slug:          "paracetamol-500",
			Description:   "Pain and fever relief tablets",
			Price:         4.50,
			OriginalPrice: 5.00,
			Discount:      10,
			Category:      model.CategoryMedicines,
			BodySystem:    "nervous",
			Conditions:    pq.StringArray{"fever", "headache", "pain"},
			InStock:       true,
			Variations: []model.ProductVariation{
				{Label: "20 tablets", PriceDelta: 0, InStock: true},
				{Label: "50 tablets", PriceDelta: 5.50, InStock: true},
			},
		},
		{
			Name:        "Ibuprofen 400mg",
			Slug:        "ibuprofen-400",
			Description: "Anti-inflammatory and pain relief",
			Price:       6.90,
			Category:    model.CategoryMedicines,
			BodySystem:  "musculoskeletal",
			Conditions:  pq.StringArray{"pain", "inflammation", "fever"},
			InStock:     true,
			Variations: []model.ProductVariation{
				{Label: "10 tablets", PriceDelta: 0, InStock: true},
				{Label: "30 tablets", PriceDelta: 8.00, InStock: true},
			},
		},
		{
			Name:        "Loratadine 10mg",
			Slug:        "loratadine-10",
			Description: "Non-drowsy antihistamine for allergy relief",
			Price:       8.20,
			Category:    model.CategoryMedicines,
			BodySystem:  "respiratory",
			Conditions:  pq.StringArray{"allergy", "hay-fever", "rhinitis"},
			InStock:     true,
		},
		{
			Name:        "Omeprazole 20mg",
			Slug:        "omeprazole-20",
			Description: "Acid reflux and heartburn relief capsules",
			Price:       11.40,
			Category:    model.CategoryMedicines,
			BodySystem:  "digestive",
			Conditions:  pq.StringArray{"heartburn", "acid-reflux", "gastritis"},
			InStock:     true,
		},
		{
			Name:          "Vitamin C 1000mg",
			Slug:          "vitamin-c-1000",
			Description:   "Effervescent immune support tablets",
			Price:         9.90,
			OriginalPrice: 12.90,
			Discount:      23,
			Category:      model.CategorySupplements,
			BodySystem:    "immune",
			Conditions:    pq.StringArray{"cold", "flu"},
			InStock:       true,
			Variations: []model.ProductVariation{
				{Label: "20 effervescent tablets", PriceDelta: 0, InStock: true},
				{Label: "40 effervescent tablets", PriceDelta: 7.00, InStock: false},
			},
		},
		{
			Name:        "Cough Syrup",
			Slug:        "cough-syrup",
			Description: "Soothing syrup for dry and chesty coughs",
			Price:       7.80,
			Category:    model.CategoryMedicines,
			BodySystem:  "respiratory",
			Conditions:  pq.StringArray{"cough", "cold", "flu"},
			InStock:     true,
			Variations: []model.ProductVariation{
				{Label: "120ml", PriceDelta: 0, InStock: true},
				{Label: "200ml", PriceDelta: 3.20, InStock: true},
			},
		},
		{
			Name:        "Oral Rehydration Salts",
			Slug:        "oral-rehydration-salts",
			Description: "Electrolyte replacement sachets",
			Price:       3.60,
			Category:    model.CategoryMedicines,
			BodySystem:  "digestive",
			Conditions:  pq.StringArray{"dehydration", "diarrhea"},
			InStock:     true,
		},
		{
			Name:        "Digital Thermometer",
			Slug:        "digital-thermometer",
			Description: "Fast-read clinical thermometer",
			Price:       12.50,
			Category:    model.CategoryMedical,
			BodySystem:  "",
			InStock:     true,
		},
		{
			Name:        "Baby Diaper Rash Cream",
			Slug:        "diaper-rash-cream",
			Description: "Zinc oxide barrier cream",
			Price:       8.75,
			Category:    model.CategoryBabyCare,
			BodySystem:  "integumentary",
			Conditions:  pq.StringArray{"rash", "irritation"},
			InStock:     true,
		},
		{
			Name:        "Sunscreen SPF 50",
			Slug:        "sunscreen-spf50",
			Description: "Broad spectrum facial sunscreen",
			Price:       15.30,
			Category:    model.CategoryPersonal,
			BodySystem:  "integumentary",
			InStock:     false,
		},
	}
}
