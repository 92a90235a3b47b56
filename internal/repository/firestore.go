package repository

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ordersCollection        = "orders"
	prescriptionsCollection = "prescriptions"
	sellersCollection       = "sellers"
	productsCollection      = "products"
	adminsCollection        = "admins"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrDBNotReady = errors.New("database not initialized")
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// decodeFunc turns a document into a model value carrying the document id.
type decodeFunc[T any] func(doc *firestore.DocumentSnapshot) (T, error)

func decodeWithID[T any](setID func(*T, string)) decodeFunc[T] {
	return func(doc *firestore.DocumentSnapshot) (T, error) {
		var v T
		if err := doc.DataTo(&v); err != nil {
			return v, err
		}
		setID(&v, doc.Ref.ID)
		return v, nil
	}
}

func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef, decode decodeFunc[T]) (*T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v, err := decode(snap)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func txGetDoc[T any](tx *firestore.Transaction, ref *firestore.DocumentRef, decode decodeFunc[T]) (*T, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v, err := decode(snap)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryAll[T any](ctx context.Context, q firestore.Query, decode decodeFunc[T]) ([]T, error) {
	it := q.Documents(ctx)
	defer it.Stop()
	list := make([]T, 0)
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

type snapshotSource[T any] struct {
	it     *firestore.QuerySnapshotIterator
	decode decodeFunc[T]
}

func (s *snapshotSource[T]) Next() ([]T, error) {
	snap, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, err
	}
	list := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func (s *snapshotSource[T]) Stop() {
	s.it.Stop()
}

func watchQuery[T any](q firestore.Query, fn decodeFunc[T]) realtime.Opener[T] {
	return func(ctx context.Context) realtime.Source[T] {
		return &snapshotSource[T]{it: q.Snapshots(ctx), decode: fn}
	}
}
