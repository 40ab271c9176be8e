// File: cmd/seed/main.go
//
// Seeds freshly generated buyer codes into the code store. Intended for
// operators preparing a sales batch:
//
//	go run ./cmd/seed -n 25 -note "batch 2026-09"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"telegram-buyer-verification/internal/domain/model"
	pg "telegram-buyer-verification/internal/infra/db/postgres"
	"telegram-buyer-verification/internal/usecase"
)

func main() {
	dbURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	table := flag.String("table", "buyer_codes", "table holding the buyer codes")
	count := flag.Int("n", 10, "number of codes to generate")
	note := flag.String("note", "", "note stored with every generated code")
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("database url is required (flag -database-url or DATABASE_URL)")
	}

	ctx := context.Background()
	pool, err := pg.NewPgxPool(ctx, *dbURL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := pg.NewBuyerCodeRepo(pool, *table)

	for i := 0; i < *count; i++ {
		code, err := usecase.GenerateBuyerCode()
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		if err := repo.Insert(ctx, &model.BuyerCode{Code: code, Note: *note}); err != nil {
			log.Fatalf("insert %s: %v", code, err)
		}
		fmt.Println(code)
	}
}
