package economy

import (
	"context"
	"strings"
	"testing"
	"time"

	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdoptPet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pet, err := svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)
	assert.Equal(t, "Ember", pet.Name)
	assert.Equal(t, 1, pet.Level)
	assert.Equal(t, 50, pet.HP)
	assert.Equal(t, 80, pet.Hunger)

	// One pet per user.
	_, err = svc.AdoptPet(ctx, 1, "Second")
	assert.Equal(t, coalerr.KindConflict, coalerr.KindOf(err))
}

func TestAdoptPetNameValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdoptPet(ctx, 1, "")
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err))

	_, err = svc.AdoptPet(ctx, 1, strings.Repeat("a", 33))
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err))
}

func TestFeedPetNeedsFood(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.FeedPet(ctx, 1)
	assert.Equal(t, coalerr.KindNotFound, coalerr.KindOf(err))

	_, err = svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)

	_, err = svc.FeedPet(ctx, 1)
	assert.Equal(t, coalerr.KindInsufficientItems, coalerr.KindOf(err))

	_, err = svc.Buy(ctx, 1, "pet_food", 2)
	require.NoError(t, err)

	pet, err := svc.FeedPet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, pet.Hunger, "hunger clamps at 100")

	u, _ := svc.GetUser(ctx, 1)
	assert.Equal(t, int64(1), u.Inventory["pet_food"])
}

func TestPlayWithPetCooldown(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)

	res, err := svc.PlayWithPet(ctx, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ExpGained, int64(10))
	assert.LessOrEqual(t, res.ExpGained, int64(25))

	_, err = svc.PlayWithPet(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, coalerr.KindOnCooldown, coalerr.KindOf(err))

	clk.Advance(30 * time.Minute)
	_, err = svc.PlayWithPet(ctx, 1)
	assert.NoError(t, err)
}

func TestPlayWithPetRefusesWhenStarving(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Pet.Hunger = 10
	require.NoError(t, store.SaveUser(ctx, u))

	clk.Advance(time.Hour)
	_, err = svc.PlayWithPet(ctx, 1)
	assert.Equal(t, coalerr.KindInvalidArgument, coalerr.KindOf(err))
}

func TestPlayWithPetLevelsUp(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)

	// Sit right below the level requirement so any play levels the pet.
	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Pet.Exp = 95
	require.NoError(t, store.SaveUser(ctx, u))

	clk.Advance(time.Hour)
	res, err := svc.PlayWithPet(ctx, 1)
	require.NoError(t, err)
	require.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Pet.Level)
	assert.Equal(t, 60, res.Pet.MaxHP)
	assert.Equal(t, 12, res.Pet.Attack)
	assert.InDelta(t, 150.0, res.Pet.ExpNeeded, 1e-9)
}

func TestHealPet(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdoptPet(ctx, 1, "Ember")
	require.NoError(t, err)

	_, err = svc.HealPet(ctx, 1)
	assert.Equal(t, coalerr.KindInsufficientItems, coalerr.KindOf(err))

	_, err = svc.Credit(ctx, 1, 100, "vet fund")
	require.NoError(t, err)
	_, err = svc.Buy(ctx, 1, "pet_medicine", 1)
	require.NoError(t, err)

	u, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	u.Pet.Health = 15
	u.Pet.HP = 5
	require.NoError(t, store.SaveUser(ctx, u))

	pet, err := svc.HealPet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, pet.Health)
	assert.Equal(t, pet.MaxHP, pet.HP)
}
