package economy

import (
	"context"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

const playCooldown = 30 * time.Minute

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// AdoptPet gives the user a starter pet. One pet per user.
func (s *Service) AdoptPet(ctx context.Context, userID int64, name string) (*models.Pet, error) {
	if name == "" {
		return nil, coalerr.InvalidArgument("the pet needs a name")
	}
	if len(name) > 32 {
		return nil, coalerr.InvalidArgument("pet names are at most 32 characters")
	}

	var pet *models.Pet
	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Pet != nil {
			return coalerr.Conflict("you already have a pet named %s", u.Pet.Name)
		}
		u.Pet = &models.Pet{
			Name:      name,
			HP:        50,
			MaxHP:     50,
			Attack:    10,
			Defense:   10,
			Hunger:    80,
			Happiness: 80,
			Health:    100,
			Level:     1,
			ExpNeeded: 100,
		}
		pet = u.Pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// FeedPet consumes one pet food item and restores hunger and health.
func (s *Service) FeedPet(ctx context.Context, userID int64) (*models.Pet, error) {
	var pet *models.Pet
	now := s.clock.Now().Unix()

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Pet == nil {
			return coalerr.NotFound("you have no pet to feed")
		}
		if u.Inventory["pet_food"] < 1 {
			return coalerr.InsufficientItems("you need pet food from the shop")
		}

		u.Inventory["pet_food"]--
		u.Pet.Hunger = clampStat(u.Pet.Hunger + 30)
		u.Pet.Health = clampStat(u.Pet.Health + 10)
		u.Pet.LastFed = now
		pet = u.Pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// PetPlayResult reports one play session.
type PetPlayResult struct {
	Pet       *models.Pet
	ExpGained int64
	LeveledUp bool
}

// PlayWithPet raises happiness and grants experience, at most once per
// half hour. Levelling multiplies the next requirement by 1.5 and
// grows the combat stats.
func (s *Service) PlayWithPet(ctx context.Context, userID int64) (*PetPlayResult, error) {
	var result PetPlayResult
	now := s.clock.Now().Unix()

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Pet == nil {
			return coalerr.NotFound("you have no pet to play with")
		}

		cooldown := int64(playCooldown / time.Second)
		if u.Pet.LastPlayed > 0 {
			if elapsed := now - u.Pet.LastPlayed; elapsed < cooldown {
				return coalerr.OnCooldown(time.Duration(cooldown-elapsed) * time.Second)
			}
		}
		if u.Pet.Hunger < 20 {
			return coalerr.InvalidArgument("%s is too hungry to play", u.Pet.Name)
		}

		exp := s.rollRange(10, 25)
		u.Pet.Exp += exp
		u.Pet.Happiness = clampStat(u.Pet.Happiness + 15)
		u.Pet.Hunger = clampStat(u.Pet.Hunger - 10)
		u.Pet.LastPlayed = now

		leveled := false
		for float64(u.Pet.Exp) >= u.Pet.ExpNeeded {
			u.Pet.Exp -= int64(u.Pet.ExpNeeded)
			u.Pet.Level++
			u.Pet.ExpNeeded *= 1.5
			u.Pet.MaxHP += 10
			u.Pet.HP = u.Pet.MaxHP
			u.Pet.Attack += 2
			u.Pet.Defense += 2
			leveled = true
		}

		result = PetPlayResult{Pet: u.Pet, ExpGained: exp, LeveledUp: leveled}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HealPet consumes pet medicine to restore health fully.
func (s *Service) HealPet(ctx context.Context, userID int64) (*models.Pet, error) {
	var pet *models.Pet

	_, err := s.mutate(ctx, userID, func(u *models.User) error {
		if u.Pet == nil {
			return coalerr.NotFound("you have no pet to heal")
		}
		if u.Inventory["pet_medicine"] < 1 {
			return coalerr.InsufficientItems("you need pet medicine from the shop")
		}
		u.Inventory["pet_medicine"]--
		u.Pet.Health = 100
		u.Pet.HP = u.Pet.MaxHP
		pet = u.Pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}
