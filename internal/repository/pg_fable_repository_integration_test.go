package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fables-server/internal/models"
	"fables-server/internal/repository"
	"fables-server/migrations"

	"github.com/docker/docker/client"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type FableRepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	repo        repository.FableRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func (s *FableRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	require.NoError(s.T(), s.runMigrations(pgConnStr), "Failed to run migrations")

	s.repo = repository.NewPgFableRepository(s.pgPool, s.logger)
	s.userRepo = repository.NewPgUserRepository(s.pgPool, s.logger)
}

func (s *FableRepositoryTestSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
}

func (s *FableRepositoryTestSuite) SetupTest() {
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE fables, users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func (s *FableRepositoryTestSuite) runMigrations(dbURL string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func TestFableRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(FableRepositoryTestSuite))
}

func (s *FableRepositoryTestSuite) newFable(name string) *models.Fable {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Fable{
		Name:       name,
		CreatorID:  uuid.New(),
		Locales:    []string{models.DefaultLocale},
		Characters: []models.Character{},
		Messages:   []models.Message{},
		Likes:      []models.Reaction{},
		Dislikes:   []models.Reaction{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Revision:   1,
	}
}

func (s *FableRepositoryTestSuite) TestCreateAndGetRoundTrip() {
	t := s.T()
	ctx := context.Background()

	fable := s.newFable("The Lion and the Mouse")
	now := time.Now().UTC().Truncate(time.Millisecond)
	fable.Characters = []models.Character{{ID: uuid.New(), Name: "Lion"}}
	fable.Messages = []models.Message{{
		ID:          uuid.New(),
		MessageType: models.MessageTypeText,
		Body:        "Once upon a time",
		Character:   "Lion",
		Date:        now,
	}}
	fable.Likes = []models.Reaction{{UserID: uuid.New(), Date: now}}
	fable.LikesCount = 1

	require.NoError(t, s.repo.Create(ctx, fable))

	got, err := s.repo.GetByID(ctx, fable.ID)
	require.NoError(t, err)
	require.Equal(t, fable.Name, got.Name)
	require.Equal(t, fable.CreatorID, got.CreatorID)
	require.Equal(t, fable.Locales, got.Locales)
	require.Equal(t, fable.Characters, got.Characters)
	require.Len(t, got.Messages, 1)
	require.Equal(t, fable.Messages[0].ID, got.Messages[0].ID)
	require.Equal(t, fable.Messages[0].Body, got.Messages[0].Body)
	require.Equal(t, models.MessageTypeText, got.Messages[0].MessageType)
	require.Equal(t, fable.Likes[0].UserID, got.Likes[0].UserID)
	require.Equal(t, 1, got.LikesCount)
	require.Equal(t, int64(1), got.Revision)
}

func (s *FableRepositoryTestSuite) TestGetMissingReportsNotFound() {
	t := s.T()

	_, err := s.repo.GetByID(context.Background(), uuid.New())
	require.True(t, errors.Is(err, models.ErrNotFound), "Error should be ErrNotFound")
}

func (s *FableRepositoryTestSuite) TestSaveBumpsRevision() {
	t := s.T()
	ctx := context.Background()

	fable := s.newFable("The Ant and the Grasshopper")
	require.NoError(t, s.repo.Create(ctx, fable))

	fable.Name = "The Ant and the Grasshopper, Revised"
	require.NoError(t, s.repo.Save(ctx, fable))
	require.Equal(t, int64(2), fable.Revision)

	got, err := s.repo.GetByID(ctx, fable.ID)
	require.NoError(t, err)
	require.Equal(t, "The Ant and the Grasshopper, Revised", got.Name)
	require.Equal(t, int64(2), got.Revision)
}

func (s *FableRepositoryTestSuite) TestSaveDetectsConcurrentModification() {
	t := s.T()
	ctx := context.Background()

	fable := s.newFable("The Boy Who Cried Wolf")
	require.NoError(t, s.repo.Create(ctx, fable))

	// Two readers load the same revision.
	first, err := s.repo.GetByID(ctx, fable.ID)
	require.NoError(t, err)
	second, err := s.repo.GetByID(ctx, fable.ID)
	require.NoError(t, err)

	first.ApplyLike(uuid.New(), time.Now().UTC())
	require.NoError(t, s.repo.Save(ctx, first))

	second.ApplyLike(uuid.New(), time.Now().UTC())
	err = s.repo.Save(ctx, second)
	require.True(t, errors.Is(err, models.ErrVersionConflict), "Error should be ErrVersionConflict")
}

func (s *FableRepositoryTestSuite) TestSaveMissingReportsNotFound() {
	t := s.T()

	fable := s.newFable("Never stored")
	err := s.repo.Save(context.Background(), fable)
	require.True(t, errors.Is(err, models.ErrNotFound), "Error should be ErrNotFound")
}

func (s *FableRepositoryTestSuite) TestDelete() {
	t := s.T()
	ctx := context.Background()

	fable := s.newFable("The Tortoise and the Hare")
	require.NoError(t, s.repo.Create(ctx, fable))
	require.NoError(t, s.repo.Delete(ctx, fable.ID))

	_, err := s.repo.GetByID(ctx, fable.ID)
	require.True(t, errors.Is(err, models.ErrNotFound), "Error should be ErrNotFound")

	err = s.repo.Delete(ctx, fable.ID)
	require.True(t, errors.Is(err, models.ErrNotFound), "Deleting twice should report ErrNotFound")
}

func (s *FableRepositoryTestSuite) TestListByLocaleOrdersAndPaginates() {
	t := s.T()
	ctx := context.Background()

	// Three fables with 2, 0 and 1 likes respectively.
	likeCounts := []int{2, 0, 1}
	ids := make([]uuid.UUID, len(likeCounts))
	for i, likes := range likeCounts {
		fable := s.newFable(fmt.Sprintf("Fable %d", i))
		for j := 0; j < likes; j++ {
			fable.ApplyLike(uuid.New(), time.Now().UTC())
		}
		require.NoError(t, s.repo.Create(ctx, fable))
		ids[i] = fable.ID
	}

	fables, total, err := s.repo.ListByLocale(ctx, models.DefaultLocale, 0, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, fables, 2)
	require.Equal(t, ids[0], fables[0].ID, "Most liked fable should come first")
	require.Equal(t, ids[2], fables[1].ID)

	rest, total, err := s.repo.ListByLocale(ctx, models.DefaultLocale, 2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, rest, 1)
	require.Equal(t, ids[1], rest[0].ID)
}

func (s *FableRepositoryTestSuite) TestUserRepositoryRoundTrip() {
	t := s.T()
	ctx := context.Background()

	user := &models.User{Username: "aesop", PasswordHash: "hash"}
	require.NoError(t, s.userRepo.CreateUser(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	dup := &models.User{Username: "aesop", PasswordHash: "other"}
	err := s.userRepo.CreateUser(ctx, dup)
	require.True(t, errors.Is(err, models.ErrUserAlreadyExists), "Error should be ErrUserAlreadyExists")

	got, err := s.userRepo.GetUserByUsername(ctx, "aesop")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	byID, err := s.userRepo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "aesop", byID.Username)

	_, err = s.userRepo.GetUserByUsername(ctx, "nobody")
	require.True(t, errors.Is(err, models.ErrUserNotFound), "Error should be ErrUserNotFound")
}
