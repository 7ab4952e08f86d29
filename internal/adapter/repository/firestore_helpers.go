package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agrimarket/pkg/errors"
)

const (
	usersCollection       = "users"
	cropsCollection       = "crops"
	poolsCollection       = "communityPools"
	poolMembersCollection = "poolMembers"
	ordersCollection      = "orders"
	cartCollection        = "cart"
	reviewsCollection     = "reviews"
)

// readErr maps a document read failure onto the app error taxonomy.
func readErr(resource string, err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to get "+resource, err)
}

// getAll drains an iterator into typed values, stamping document IDs.
func getAll[T any](iter *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer iter.Stop()

	items := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		item := new(T)
		if err := doc.DataTo(item); err != nil {
			return nil, err
		}
		if setID != nil {
			setID(item, doc.Ref.ID)
		}
		items = append(items, item)
	}

	return items, nil
}

// txGet reads one document inside a transaction.
func txGet[T any](tx *firestore.Transaction, ref *firestore.DocumentRef, resource string) (*T, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		return nil, readErr(resource, err)
	}

	item := new(T)
	if err := doc.DataTo(item); err != nil {
		return nil, errors.Internal("Failed to parse "+resource+" data", err)
	}
	return item, nil
}

func isDone(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	c := status.Code(err)
	return c == codes.Canceled || c == codes.DeadlineExceeded
}

// txErr keeps app errors raised inside a transaction and wraps the rest.
func txErr(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.Internal(message, err)
}
