package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"applecare-activation/internal/config"
	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
	pg "applecare-activation/internal/infra/db/postgres"
	"applecare-activation/internal/usecase"
)

// Seeds the default admin account and a starter plan catalog. Safe to run
// repeatedly; existing rows are left alone.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin-email", "admin@example.com", "default admin login")
	adminPassword := flag.String("admin-password", "admin123", "default admin password")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo)

	// ---- Admin account ----
	if _, err := userRepo.FindByEmail(ctx, repository.NoTX, *adminEmail); err == nil {
		fmt.Printf("admin %s already present. No changes.\n", *adminEmail)
	} else if err != domain.ErrNotFound {
		log.Fatalf("find admin: %v", err)
	} else {
		hash, err := usecase.HashPassword(*adminPassword)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		admin, err := model.NewUser(uuid.NewString(), *adminEmail, "Administrator", hash)
		if err != nil {
			log.Fatalf("build admin: %v", err)
		}
		if err := userRepo.Save(ctx, repository.NoTX, admin); err != nil {
			log.Fatalf("save admin: %v", err)
		}
		fmt.Printf("seeded admin: %s\n", admin.Email)
	}

	// ---- Plan catalog ----
	plans, err := planUC.List(ctx, false)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		return
	}

	seed := []struct {
		Name     string
		PartCode string
		SKU      string
		Desc     string
		MRP      int64
	}{
		{"AppleCare+ for iPhone 15", "S9527ZM/A", "AC-IP15", "2 years of coverage for iPhone 15", 14900},
		{"AppleCare+ for iPhone 15 Pro", "S9529ZM/A", "AC-IP15P", "2 years of coverage for iPhone 15 Pro", 20900},
		{"AppleCare+ for MacBook Air", "S7131ZM/A", "AC-MBA", "3 years of coverage for MacBook Air", 22900},
		{"AppleCare+ for iPad", "S8518ZM/A", "AC-IPAD", "2 years of coverage for iPad", 8900},
		{"AppleCare+ for Apple Watch", "S9284ZM/A", "AC-AW", "2 years of coverage for Apple Watch", 6900},
	}
	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.PartCode, s.SKU, s.Desc, s.MRP)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, sku=%s, mrp=%d)\n", p.Name, p.ID, p.SKU, p.MRP)
	}

	fmt.Println("Seeding complete.")
}
