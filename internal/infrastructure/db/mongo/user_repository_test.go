package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lingoleap/learning-api/internal/core/domain"
)

const testNS = "lingoleap.users"

func userDoc(id primitive.ObjectID, role string, refreshHash any) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "email", Value: "alice@x.com"},
		{Key: "name", Value: "Alice"},
		{Key: "password_hash", Value: "$2a$10$hash"},
		{Key: "role", Value: role},
		{Key: "refresh_token_hash", Value: refreshHash},
		{Key: "created_at", Value: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "updated_at", Value: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create maps duplicate key to ErrDuplicateEmail", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		repo := NewUserRepository(mt.DB)
		_, err := repo.Create(context.Background(), &domain.User{Email: "alice@x.com", Role: domain.RoleUser})
		assert.ErrorIs(mt, err, domain.ErrDuplicateEmail)
	})

	mt.Run("create returns the inserted id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewUserRepository(mt.DB)
		u, err := repo.Create(context.Background(), &domain.User{Email: " Alice@X.com", Role: domain.RoleUser})
		require.NoError(mt, err)
		assert.Len(mt, u.ID, 24)
		assert.Equal(mt, "alice@x.com", u.Email)
	})

	mt.Run("find by id decodes a null refresh hash", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, userDoc(id, domain.RoleUser, nil)))

		repo := NewUserRepository(mt.DB)
		u, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "alice@x.com", u.Email)
		assert.False(mt, u.HasSession())
	})

	mt.Run("find by email decodes the stored refresh hash", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, userDoc(id, domain.RoleAdmin, "h1")))

		repo := NewUserRepository(mt.DB)
		u, err := repo.FindByEmail(context.Background(), "ALICE@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "h1", u.RefreshTokenHash)
		assert.Equal(mt, domain.RoleAdmin, u.Role)
	})

	mt.Run("find by email maps no documents to ErrUserNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		repo := NewUserRepository(mt.DB)
		_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("malformed ids are not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)

		err = repo.SetRefreshHash(context.Background(), "nope", "")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)

		swapped, err := repo.SwapRefreshHash(context.Background(), "nope", "a", "b")
		require.NoError(mt, err)
		assert.False(mt, swapped)
	})

	mt.Run("set refresh hash on missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		repo := NewUserRepository(mt.DB)
		err := repo.SetRefreshHash(context.Background(), primitive.NewObjectID().Hex(), "h")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("swap succeeds when the old hash matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		repo := NewUserRepository(mt.DB)
		swapped, err := repo.SwapRefreshHash(context.Background(), primitive.NewObjectID().Hex(), "h1", "h2")
		require.NoError(mt, err)
		assert.True(mt, swapped)
	})

	mt.Run("swap loses when another writer rotated first", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		repo := NewUserRepository(mt.DB)
		swapped, err := repo.SwapRefreshHash(context.Background(), primitive.NewObjectID().Hex(), "h1", "h2")
		require.NoError(mt, err)
		assert.False(mt, swapped)
	})

	mt.Run("swap without an active session never matches", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		swapped, err := repo.SwapRefreshHash(context.Background(), primitive.NewObjectID().Hex(), "", "h2")
		require.NoError(mt, err)
		assert.False(mt, swapped)
	})

	mt.Run("set role returns the updated user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, domain.RoleAdmin, nil)},
		))

		repo := NewUserRepository(mt.DB)
		u, err := repo.SetRole(context.Background(), id.Hex(), domain.RoleAdmin)
		require.NoError(mt, err)
		assert.Equal(mt, domain.RoleAdmin, u.Role)
	})

	mt.Run("set role to the current role is rejected", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		repo := NewUserRepository(mt.DB)
		_, err := repo.SetRole(context.Background(), primitive.NewObjectID().Hex(), domain.RoleUser)
		assert.ErrorIs(mt, err, domain.ErrRoleUnchanged)
	})
}
