// app/bootstrap.go
package app

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/rental"
)

func intp(n int) *int { return &n }

// DemoItems is the starter catalogue for a fresh kiosk.
var DemoItems = []rental.ItemInput{
	{Name: "Nintendo Switch", Category: "game", IsTimeLimited: true, RentalTimeMinutes: intp(30), MaxRentalsPerUser: intp(2), DisplayOrder: 1},
	{Name: "Board game set", Category: "game", IsTimeLimited: true, RentalTimeMinutes: intp(60), DisplayOrder: 2},
	{Name: "Study room", Category: "space", IsTimeLimited: true, RentalTimeMinutes: intp(120), MaxRentalsPerUser: intp(1), IsAutomaticGenderCount: true, DisplayOrder: 3},
	{Name: "Umbrella", Category: "daily", DisplayOrder: 4},
	{Name: "Phone charger", Category: "daily", DisplayOrder: 5},
}

// SeedDemoItems inserts DemoItems when the catalogue is empty. It reports
// how many were created.
func SeedDemoItems(ctx context.Context, repo *db.Repo, svc *rental.Service, log *slog.Logger) (int, error) {
	existing, err := repo.ListItems(ctx, db.ItemsQuery{IncludeHidden: true})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Info("catalogue not empty, skipping seed", "items", len(existing))
		return 0, nil
	}

	n := 0
	for _, in := range DemoItems {
		if _, err := svc.CreateItem(ctx, in); err != nil {
			return n, err
		}
		n++
	}
	log.Info("seeded demo items", "count", n)
	return n, nil
}
