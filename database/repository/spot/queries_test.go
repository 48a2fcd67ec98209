package spotRepo

import (
	"context"
	"testing"
	"time"

	"smartparking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var (
	now   = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	until = time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
)

func updated(n, modified int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: modified})
}

func counted(mt *mtest.T, n int32) bson.D {
	ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

// sentUpdate decodes the filter and update of the first update statement sent.
func sentUpdate(mt *mtest.T) (bson.M, bson.M) {
	mt.Helper()
	var evt = mt.GetStartedEvent()
	for evt != nil && evt.CommandName != "update" {
		evt = mt.GetStartedEvent()
	}
	require.NotNil(mt, evt, "no update command sent")

	stmt := evt.Command.Lookup("updates").Array().Index(0).Value().Document()
	var q, u bson.M
	require.NoError(mt, bson.Unmarshal(stmt.Lookup("q").Document(), &q))
	require.NoError(mt, bson.Unmarshal(stmt.Lookup("u").Document(), &u))
	return q, u
}

func TestUpdateOccupancy(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	holder := "u1"
	fields := models.OccupancyFields{Status: models.SpotAvailable, LastUpdated: now}

	mt.Run("guard matches current hold", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(1, 1))

		guard := &models.OccupancyGuard{Status: models.SpotOccupied, OccupiedUntil: &until}
		require.NoError(mt, repo.UpdateOccupancy(context.Background(), "s1", fields, guard))

		q, u := sentUpdate(mt)
		assert.Equal(mt, bson.M{
			"id":            "s1",
			"status":        "occupied",
			"occupiedUntil": primitive.NewDateTimeFromTime(until),
		}, q)
		set := u["$set"].(bson.M)
		assert.Equal(mt, "available", set["status"])
		assert.Nil(mt, set["occupiedBy"])
		assert.Nil(mt, set["occupiedUntil"])
	})

	mt.Run("guard without hold end matches null", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(1, 1))

		held := models.OccupancyFields{Status: models.SpotOccupied, OccupiedBy: &holder, OccupiedUntil: &until, LastUpdated: now}
		guard := &models.OccupancyGuard{Status: models.SpotAvailable}
		require.NoError(mt, repo.UpdateOccupancy(context.Background(), "s1", held, guard))

		q, _ := sentUpdate(mt)
		assert.Equal(mt, bson.M{"id": "s1", "status": "available", "occupiedUntil": nil}, q)
	})

	mt.Run("no guard filters on id only", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(1, 1))

		require.NoError(mt, repo.UpdateOccupancy(context.Background(), "s1", fields, nil))
		q, _ := sentUpdate(mt)
		assert.Equal(mt, bson.M{"id": "s1"}, q)
	})

	mt.Run("guard miss on existing spot", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(0, 0), counted(mt, 1))

		guard := &models.OccupancyGuard{Status: models.SpotOccupied, OccupiedUntil: &until}
		err := repo.UpdateOccupancy(context.Background(), "s1", fields, guard)
		assert.ErrorIs(mt, err, ErrGuardMismatch)
	})

	mt.Run("guard miss on missing spot", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(0, 0), counted(mt, 0))

		guard := &models.OccupancyGuard{Status: models.SpotOccupied, OccupiedUntil: &until}
		err := repo.UpdateOccupancy(context.Background(), "nope", fields, guard)
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})
}

func TestPlaceHold(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filter admits free, lapsed or own holds", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(1, 1))

		require.NoError(mt, repo.PlaceHold(context.Background(), "s1", "u1", until, now))

		q, u := sentUpdate(mt)
		assert.Equal(mt, "s1", q["id"])
		assert.Equal(mt, bson.M{"$ne": "maintenance"}, q["status"])
		assert.Equal(mt, bson.A{
			bson.M{"status": bson.M{"$ne": "occupied"}},
			bson.M{"occupiedUntil": bson.M{"$lte": primitive.NewDateTimeFromTime(now)}},
			bson.M{"occupiedBy": "u1"},
		}, q["$or"])

		set := u["$set"].(bson.M)
		assert.Equal(mt, "occupied", set["status"])
		assert.Equal(mt, "u1", set["occupiedBy"])
		assert.Equal(mt, primitive.NewDateTimeFromTime(until), set["occupiedUntil"])
	})

	mt.Run("held by someone else", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(0, 0), counted(mt, 1))

		err := repo.PlaceHold(context.Background(), "s1", "u2", until, now)
		assert.ErrorIs(mt, err, ErrHoldConflict)
	})

	mt.Run("missing spot", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(0, 0), counted(mt, 0))

		err := repo.PlaceHold(context.Background(), "nope", "u1", until, now)
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})
}

func TestReleaseHold(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("releases own hold", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(1, 1))

		released, err := repo.ReleaseHold(context.Background(), "s1", "u1", now)
		require.NoError(mt, err)
		assert.True(mt, released)

		q, u := sentUpdate(mt)
		assert.Equal(mt, bson.M{"id": "s1", "status": "occupied", "occupiedBy": "u1"}, q)
		set := u["$set"].(bson.M)
		assert.Equal(mt, "available", set["status"])
		assert.Nil(mt, set["occupiedBy"])
	})

	mt.Run("hold owned by someone else", func(mt *mtest.T) {
		repo := &mongoSpotRepo{coll: mt.Coll}
		mt.AddMockResponses(updated(0, 0))

		released, err := repo.ReleaseHold(context.Background(), "s1", "u2", now)
		require.NoError(mt, err)
		assert.False(mt, released)
	})
}
