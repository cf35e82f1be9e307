package economy

import (
	"context"
	"fmt"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// ShopItem is one purchasable entry. Duration 0 means the item goes
// into the inventory permanently; a positive duration makes it a
// temporary purchase that the expiry sweep removes.
type ShopItem struct {
	ID       string
	Name     string
	Price    int64
	Duration time.Duration
}

var shopTable = []ShopItem{
	{ID: "pet_food", Name: "Pet Food", Price: 25},
	{ID: "pet_toy", Name: "Pet Toy", Price: 40},
	{ID: "pet_medicine", Name: "Pet Medicine", Price: 80},
	{ID: "lottery_ticket", Name: "Lottery Ticket", Price: 50},
	{ID: "xp_boost", Name: "XP Boost (24h)", Price: 500, Duration: 24 * time.Hour},
	{ID: "color_role", Name: "Custom Color (7d)", Price: 1500, Duration: 7 * 24 * time.Hour},
	{ID: "vip_pass", Name: "VIP Pass (30d)", Price: 5000, Duration: 30 * 24 * time.Hour},
}

// ShopItems returns the catalogue.
func ShopItems() []ShopItem {
	return append([]ShopItem(nil), shopTable...)
}

// FindShopItem looks an item up by id.
func FindShopItem(id string) (ShopItem, bool) {
	for _, it := range shopTable {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Buy purchases an item from the shop. Durable items land in the
// inventory; timed items become temporary purchases with an expiry.
func (s *Service) Buy(ctx context.Context, userID int64, itemID string, quantity int64) (*models.User, error) {
	item, ok := FindShopItem(itemID)
	if !ok {
		return nil, coalerr.NotFound("no shop item %q", itemID)
	}
	if quantity <= 0 {
		return nil, coalerr.InvalidArgument("quantity must be positive, got %d", quantity)
	}
	if item.Duration > 0 && quantity != 1 {
		return nil, coalerr.InvalidArgument("%s can only be bought one at a time", item.Name)
	}

	cost := item.Price * quantity
	now := s.clock.Now()

	u, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Coins < cost {
			return coalerr.InsufficientFunds(u.Coins, cost)
		}
		if item.Duration > 0 {
			for _, p := range u.TemporaryPurchases {
				if p.ID == item.ID && p.EndTime > now.Unix() {
					return coalerr.Conflict("%s is already active", item.Name)
				}
			}
		}

		u.Coins -= cost
		u.Statistics.TotalSpent += cost

		if item.Duration > 0 {
			u.TemporaryPurchases = append(u.TemporaryPurchases, models.TemporaryItem{
				ID:      item.ID,
				EndTime: now.Add(item.Duration).Unix(),
			})
		} else {
			if u.Inventory == nil {
				u.Inventory = make(map[string]int64)
			}
			u.Inventory[item.ID] += quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTx(ctx, userID, models.TxBuy, -cost, fmt.Sprintf("%s x%d", item.ID, quantity))
	return u, nil
}

// SweepExpiredPurchases removes expired temporary purchases and roles
// from one user and returns the ids that expired.
func (s *Service) SweepExpiredPurchases(ctx context.Context, userID int64) ([]string, error) {
	var expired []string
	now := s.clock.Now().Unix()

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		keepP := u.TemporaryPurchases[:0]
		for _, p := range u.TemporaryPurchases {
			if p.EndTime > 0 && p.EndTime <= now {
				expired = append(expired, p.ID)
				continue
			}
			keepP = append(keepP, p)
		}
		u.TemporaryPurchases = keepP

		keepR := u.TemporaryRoles[:0]
		for _, r := range u.TemporaryRoles {
			if r.EndTime > 0 && r.EndTime <= now {
				expired = append(expired, r.ID)
				continue
			}
			keepR = append(keepR, r)
		}
		u.TemporaryRoles = keepR
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
