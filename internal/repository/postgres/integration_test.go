//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fjcero/ClearGDPR/internal/model"
	repo "github.com/fjcero/ClearGDPR/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "cleargdpr_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/cleargdpr_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newSubject(id string) model.Subject {
	return model.Subject{
		ID:                 id,
		EncryptedData:      []byte("opaque ciphertext for " + id),
		DirectMarketing:    true,
		EmailCommunication: true,
		Research:           true,
		Status:             model.SubjectStatusActive,
	}
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	t.Run("subject_repository", func(t *testing.T) {
		sr := repo.NewSubjectRepository(conn)

		saved, err := sr.Create(ctx, newSubject("crud-alice"))
		require.NoError(t, err)
		require.Equal(t, "crud-alice", saved.ID)
		require.True(t, saved.DirectMarketing)
		require.True(t, saved.EmailCommunication)
		require.True(t, saved.Research)
		require.Nil(t, saved.Objection)
		require.Equal(t, model.SubjectStatusActive, saved.Status)
		require.False(t, saved.CreatedAt.IsZero())

		_, err = sr.Create(ctx, newSubject("crud-alice"))
		require.ErrorIs(t, err, model.ErrConflict)

		got, err := sr.GetByID(ctx, "crud-alice")
		require.NoError(t, err)
		require.Equal(t, saved.EncryptedData, got.EncryptedData)

		_, err = sr.GetByID(ctx, "crud-nobody")
		require.ErrorIs(t, err, model.ErrNotFound)

		count, err := sr.UpdateRestrictions(ctx, "crud-alice", model.Restrictions{EmailCommunication: true})
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		count, err = sr.UpdateObjection(ctx, "crud-alice", true)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		got, err = sr.GetByID(ctx, "crud-alice")
		require.NoError(t, err)
		require.False(t, got.DirectMarketing)
		require.True(t, got.EmailCommunication)
		require.False(t, got.Research)
		require.NotNil(t, got.Objection)
		require.True(t, *got.Objection)

		count, err = sr.MarkErased(ctx, "crud-alice")
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		got, err = sr.GetByID(ctx, "crud-alice")
		require.NoError(t, err)
		require.Equal(t, model.SubjectStatusErased, got.Status)
		require.NotEmpty(t, got.EncryptedData, "erasure keeps the ciphertext")

		count, err = sr.UpdateEncryptedData(ctx, "crud-alice", []byte("fresh ciphertext"))
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		got, err = sr.GetByID(ctx, "crud-alice")
		require.NoError(t, err)
		require.Equal(t, model.SubjectStatusActive, got.Status, "writing data revives the subject")

		count, err = sr.UpdateRestrictions(ctx, "crud-nobody", model.Restrictions{})
		require.NoError(t, err)
		require.EqualValues(t, 0, count)
	})

	t.Run("key_repository", func(t *testing.T) {
		sr := repo.NewSubjectRepository(conn)
		kr := repo.NewKeyRepository(conn)

		_, err := sr.Create(ctx, newSubject("crud-bob"))
		require.NoError(t, err)

		key := model.EncryptionKey{SubjectID: "crud-bob", Material: "AGE-SECRET-KEY-TEST"}
		require.NoError(t, kr.Create(ctx, key))

		err = kr.Create(ctx, key)
		require.ErrorIs(t, err, model.ErrConflict)

		got, err := kr.GetBySubject(ctx, "crud-bob")
		require.NoError(t, err)
		require.Equal(t, key.Material, got.Material)
		require.False(t, got.CreatedAt.IsZero())

		deleted, err := kr.DeleteBySubject(ctx, "crud-bob")
		require.NoError(t, err)
		require.EqualValues(t, 1, deleted)

		_, err = kr.GetBySubject(ctx, "crud-bob")
		require.ErrorIs(t, err, model.ErrNotFound)

		deleted, err = kr.DeleteBySubject(ctx, "crud-bob")
		require.NoError(t, err)
		require.EqualValues(t, 0, deleted)
	})

	t.Run("processor_repository", func(t *testing.T) {
		pr := repo.NewProcessorRepository(conn)

		p := model.Processor{ID: "crud-p1", Name: "Analytics Corp", LogoURL: "https://example.com/logo.png"}
		require.NoError(t, pr.Upsert(ctx, p))

		p.Name = "Analytics Corp v2"
		require.NoError(t, pr.Upsert(ctx, p))

		got, err := pr.GetByID(ctx, "crud-p1")
		require.NoError(t, err)
		require.Equal(t, "Analytics Corp v2", got.Name)

		_, err = pr.GetByID(ctx, "crud-p-nobody")
		require.ErrorIs(t, err, model.ErrNotFound)

		list, err := pr.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)
	})

	t.Run("association_repository", func(t *testing.T) {
		sr := repo.NewSubjectRepository(conn)
		pr := repo.NewProcessorRepository(conn)
		ar := repo.NewAssociationRepository(conn)

		_, err := sr.Create(ctx, newSubject("crud-carol"))
		require.NoError(t, err)
		require.NoError(t, pr.Upsert(ctx, model.Processor{ID: "crud-p2", Name: "Mailer Inc"}))

		require.NoError(t, ar.Upsert(ctx, "crud-carol", "crud-p2"))
		require.NoError(t, ar.Upsert(ctx, "crud-carol", "crud-p2"), "duplicate association is a no-op")

		err = ar.Upsert(ctx, "crud-carol", "crud-p-unregistered")
		require.ErrorIs(t, err, model.ErrNotFound)

		processorIDs, err := ar.ListBySubject(ctx, "crud-carol")
		require.NoError(t, err)
		require.Equal(t, []string{"crud-p2"}, processorIDs)

		deleted, err := ar.DeleteBySubject(ctx, "crud-carol")
		require.NoError(t, err)
		require.EqualValues(t, 1, deleted)

		processorIDs, err = ar.ListBySubject(ctx, "crud-carol")
		require.NoError(t, err)
		require.Empty(t, processorIDs)
	})

	t.Run("erasure_event_repository", func(t *testing.T) {
		sr := repo.NewSubjectRepository(conn)
		er := repo.NewErasureEventRepository(conn)

		_, err := sr.Create(ctx, newSubject("crud-dave"))
		require.NoError(t, err)

		first := model.ErasureEvent{
			ID:        uuid.New(),
			SubjectID: "crud-dave",
			ErasedAt:  time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
		}
		second := model.ErasureEvent{
			ID:        uuid.New(),
			SubjectID: "crud-dave",
			ErasedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, er.Create(ctx, second))
		require.NoError(t, er.Create(ctx, first))

		events, err := er.GetBySubject(ctx, "crud-dave")
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, first.ID, events[0].ID, "events come back oldest first")
		require.Equal(t, second.ID, events[1].ID)
		require.Nil(t, events[0].LedgerReceipt)

		anchoredAt := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, er.SetReceipt(ctx, first.ID, "erasure-events/0@42", anchoredAt))

		events, err = er.GetBySubject(ctx, "crud-dave")
		require.NoError(t, err)
		require.NotNil(t, events[0].LedgerReceipt)
		require.Equal(t, "erasure-events/0@42", *events[0].LedgerReceipt)
		require.NotNil(t, events[0].AnchoredAt)
		require.WithinDuration(t, anchoredAt, *events[0].AnchoredAt, time.Millisecond)

		err = er.SetReceipt(ctx, uuid.New(), "nope", anchoredAt)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestSubjectRepository_ListByProcessor(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sr := repo.NewSubjectRepository(conn)
	kr := repo.NewKeyRepository(conn)
	pr := repo.NewProcessorRepository(conn)
	ar := repo.NewAssociationRepository(conn)

	require.NoError(t, pr.Upsert(ctx, model.Processor{ID: "list-p", Name: "Listing Processor"}))

	for _, id := range []string{"list-c", "list-a", "list-b", "list-erased"} {
		_, err := sr.Create(ctx, newSubject(id))
		require.NoError(t, err)
		require.NoError(t, kr.Create(ctx, model.EncryptionKey{SubjectID: id, Material: "key-" + id}))
		require.NoError(t, ar.Upsert(ctx, id, "list-p"))
	}

	count, err := sr.CountByProcessor(ctx, "list-p")
	require.NoError(t, err)
	require.EqualValues(t, 4, count)

	// crypto-shred one subject: key gone, status flipped
	_, err = kr.DeleteBySubject(ctx, "list-erased")
	require.NoError(t, err)
	_, err = sr.MarkErased(ctx, "list-erased")
	require.NoError(t, err)

	count, err = sr.CountByProcessor(ctx, "list-p")
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	items, err := sr.ListByProcessor(ctx, "list-p", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "list-a", items[0].ID)
	require.Equal(t, "list-b", items[1].ID)
	require.Equal(t, "list-c", items[2].ID)

	items, err = sr.ListByProcessor(ctx, "list-p", 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "list-c", items[0].ID)

	count, err = sr.CountByProcessor(ctx, "list-p-unknown")
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	items, err = sr.ListByProcessor(ctx, "list-p-unknown", 10, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTxManager_RunInTx(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	txm := repo.NewTxManager(conn)
	sr := repo.NewSubjectRepository(conn)

	t.Run("commit makes writes visible", func(t *testing.T) {
		err := txm.RunInTx(ctx, func(tx model.TxStores) error {
			if _, err := tx.Subjects.Create(ctx, newSubject("tx-commit")); err != nil {
				return err
			}
			return tx.Keys.Create(ctx, model.EncryptionKey{SubjectID: "tx-commit", Material: "key-tx"})
		})
		require.NoError(t, err)

		got, err := sr.GetByID(ctx, "tx-commit")
		require.NoError(t, err)
		require.Equal(t, "tx-commit", got.ID)
	})

	t.Run("error rolls everything back", func(t *testing.T) {
		err := txm.RunInTx(ctx, func(tx model.TxStores) error {
			if _, err := tx.Subjects.Create(ctx, newSubject("tx-rollback")); err != nil {
				return err
			}
			return errors.New("forced failure")
		})
		require.Error(t, err)

		_, err = sr.GetByID(ctx, "tx-rollback")
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}
