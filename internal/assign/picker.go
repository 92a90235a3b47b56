// Package assign chooses which seller receives a prescription.
package assign

import (
	"errors"

	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/location"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
)

var ErrNoSellerAvailable = errors.New("no active sellers available")

// Candidates returns the active sellers in city, or every active seller when
// none of them is in city.
func Candidates(city string, sellers []model.Seller) []model.Seller {
	active := lo.Filter(sellers, func(s model.Seller, _ int) bool { return s.Active })
	local := lo.Filter(active, func(s model.Seller, _ int) bool { return location.Match(s.City, city) })
	if len(local) > 0 {
		return local
	}
	return active
}

// Pick returns the least-loaded candidate for city. Ties keep the seller that
// comes first in sellers.
func Pick(city string, sellers []model.Seller) (model.Seller, error) {
	pool := Candidates(city, sellers)
	if len(pool) == 0 {
		return model.Seller{}, ErrNoSellerAvailable
	}
	best := pool[0]
	for _, s := range pool[1:] {
		if s.TotalOrders < best.TotalOrders {
			best = s
		}
	}
	return best, nil
}
