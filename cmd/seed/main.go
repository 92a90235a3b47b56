package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/shinyyama/pharmacy-admin-backend/internal/config"
	"github.com/shinyyama/pharmacy-admin-backend/internal/db"
	"github.com/shinyyama/pharmacy-admin-backend/internal/files"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
	"google.golang.org/api/option"
)

type seedSeller struct {
	Name, Email, Phone, City, Pincode, Address string
	Rating                                     float64
}

type seedProduct struct {
	Name, Category       string
	Price                float64
	Stock                int64
	RequiresPrescription bool
}

type seedCustomer struct {
	UserID, Name, Phone, Address string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fb, err := db.ConnectFirebase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect firebase: %w", err)
	}
	defer fb.Close()

	// no activity log while seeding
	activity := service.NewActivityService(nil)
	sellerRepo := repository.NewSellerRepository(fb.Firestore)
	sellers := service.NewSellerService(sellerRepo, activity)

	canSeed, err := shouldSeed(ctx, sellers)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("sellers already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	products := service.NewProductService(repository.NewProductRepository(fb.Firestore), sellerRepo, activity)
	orders := service.NewOrderService(repository.NewOrderRepository(fb.Firestore), activity)
	prescriptions := service.NewPrescriptionService(repository.NewPrescriptionRepository(fb.Firestore), sellerRepo, nil, activity)

	var sellerIDs []string
	for _, s := range buildSeedSellers() {
		rating := s.Rating
		created, err := sellers.Create(ctx, service.SellerInput{
			Name: s.Name, Email: s.Email, Phone: s.Phone,
			City: s.City, Pincode: s.Pincode, Address: s.Address,
			Rating: &rating,
		})
		if err != nil {
			return fmt.Errorf("seller %q: %w", s.Name, err)
		}
		sellerIDs = append(sellerIDs, created.ID)
	}
	log.Printf("seeded %d sellers", len(sellerIDs))

	var productCount int
	for i, p := range buildSeedProducts() {
		sellerID := sellerIDs[i%len(sellerIDs)]
		if _, err := products.Create(ctx, service.ProductInput{
			Name: p.Name, Category: p.Category, Price: p.Price, Stock: p.Stock,
			Description:          fmt.Sprintf("%s (%s)", p.Name, p.Category),
			SellerID:             sellerID,
			Image:                fmt.Sprintf("https://picsum.photos/seed/med-%d/600/600", i+1),
			RequiresPrescription: p.RequiresPrescription,
		}); err != nil {
			return fmt.Errorf("product %q: %w", p.Name, err)
		}
		productCount++
	}
	log.Printf("seeded %d products", productCount)

	fileRef, err := sampleFile(ctx, cfg)
	if err != nil {
		log.Printf("sample upload skipped: %v", err)
		fileRef = "https://picsum.photos/seed/prescription/800/1100"
	}

	customers := buildSeedCustomers()
	for i, c := range customers {
		o, err := orders.Create(ctx, service.CreateOrderInput{
			UserID: c.UserID,
			Items: []model.OrderItem{
				{ID: fmt.Sprintf("seed-%d", i), Name: "Paracetamol 500mg", Quantity: int64(i%3 + 1), Price: 35},
				{ID: fmt.Sprintf("seed-%d-b", i), Name: "ORS Sachet", Quantity: 2, Price: 22.5},
			},
			DeliveryAddress: c.Address,
		})
		if err != nil {
			return fmt.Errorf("order for %s: %w", c.Name, err)
		}
		if _, err := prescriptions.Create(ctx, service.CreatePrescriptionInput{
			UserID:          c.UserID,
			CustomerName:    c.Name,
			CustomerPhone:   c.Phone,
			OrderID:         o.ID,
			FileName:        "prescription.txt",
			FileURL:         fileRef,
			FileType:        "text/plain",
			DeliveryAddress: c.Address,
		}); err != nil {
			return fmt.Errorf("prescription for %s: %w", c.Name, err)
		}
	}
	log.Printf("seeded %d orders and prescriptions", len(customers))
	return nil
}

// sampleFile uploads a placeholder prescription when a bucket is configured.
func sampleFile(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.StorageBucket == "" {
		return "", files.ErrNoBucket
	}
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("storage client: %w", err)
	}
	defer sc.Close()
	store := files.NewStore(sc, cfg.StorageBucket, cfg.SignedURLTTL)
	return store.Upload(ctx, "prescription.txt", "text/plain", []byte("Rx: Amoxicillin 500mg, 1 tab TID x 5 days\n"))
}

func shouldSeed(ctx context.Context, sellers service.SellerService) (bool, error) {
	existing, err := sellers.List(ctx, false, "")
	if err != nil {
		return false, fmt.Errorf("count sellers: %w", err)
	}
	if len(existing) == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}

func buildSeedSellers() []seedSeller {
	return []seedSeller{
		{"Apollo Pharmacy Andheri", "andheri@apollo.example", "+91 22 4000 1001", "Mumbai", "400053", "Shop 4, Lokhandwala Market, Andheri West", 4.6},
		{"MedPlus Bandra", "bandra@medplus.example", "+91 22 4000 1002", "Mumbai", "400050", "Hill Road, Bandra West", 4.2},
		{"Wellness Forever Koramangala", "koramangala@wellness.example", "+91 80 4000 2001", "Bangalore", "560034", "80 Feet Road, Koramangala", 4.4},
		{"Netmeds Indiranagar", "indiranagar@netmeds.example", "+91 80 4000 2002", "Bangalore", "560038", "100 Feet Road, Indiranagar", 3.9},
		{"Frank Ross Park Street", "parkstreet@frankross.example", "+91 33 4000 3001", "Kolkata", "700016", "Park Street", 4.1},
		{"Guardian Connaught Place", "cp@guardian.example", "+91 11 4000 4001", "Delhi", "110001", "Block N, Connaught Place", 4.5},
	}
}

func buildSeedProducts() []seedProduct {
	return []seedProduct{
		{"Paracetamol 500mg (Strip of 10)", "Pain Relief", 35, 500, false},
		{"Ibuprofen 400mg (Strip of 10)", "Pain Relief", 48, 300, false},
		{"Amoxicillin 500mg (Strip of 10)", "Antibiotics", 112, 120, true},
		{"Azithromycin 250mg (Strip of 6)", "Antibiotics", 98, 80, true},
		{"Cetirizine 10mg (Strip of 10)", "Allergy", 22, 400, false},
		{"Metformin 500mg (Strip of 15)", "Diabetes", 40, 200, true},
		{"Atorvastatin 10mg (Strip of 10)", "Cardiac", 86, 150, true},
		{"ORS Sachet (Pack of 5)", "Hydration", 75, 600, false},
		{"Vitamin D3 60000 IU (4 Capsules)", "Supplements", 130, 250, false},
		{"Digital Thermometer", "Devices", 199, 60, false},
		{"Pantoprazole 40mg (Strip of 15)", "Gastro", 95, 180, true},
		{"Salbutamol Inhaler", "Respiratory", 160, 40, true},
	}
}

func buildSeedCustomers() []seedCustomer {
	return []seedCustomer{
		{"seed-user-1", "Aarav Shah", "+91 98200 00001", "Flat 12, Sea View, Juhu, Mumbai, Maharashtra 400049"},
		{"seed-user-2", "Diya Iyer", "+91 98450 00002", "22 MG Road, Bengaluru, Karnataka 560001"},
		{"seed-user-3", "Kabir Das", "+91 98300 00003", "14 Lake Road, Kolkata, West Bengal 700029"},
		{"seed-user-4", "Meera Nair", "+91 98100 00004", "B-7 Hauz Khas, New Delhi 110016"},
		{"seed-user-5", "Rohan Gupta", "+91 99000 00005", "Sector 18, Noida, Uttar Pradesh 201301"},
	}
}
