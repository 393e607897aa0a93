package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/interfaces"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	invocationsCollection = "invocations"

	fieldStartedAt = "started_at"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Probe the collection so a bad project ID or missing permission fails at
	// startup instead of on the first hook call.
	_, err = client.Collection(invocationsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection probe returned error (may be empty collection)",
			"error", err,
			"code", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{client: client}, nil
}

// PutInvocation stores an invocation record
func (f *Firestore) PutInvocation(ctx context.Context, record *model.InvocationRecord) error {
	if record == nil {
		return goerr.New("invocation record is nil")
	}
	if record.ID == "" {
		return goerr.New("invocation record ID is empty")
	}

	_, err := f.client.Collection(invocationsCollection).Doc(record.ID.String()).Set(ctx, record)
	if err != nil {
		return goerr.Wrap(err, "failed to save invocation record",
			goerr.V("id", record.ID),
		)
	}
	return nil
}

// GetInvocation retrieves an invocation record by ID
func (f *Firestore) GetInvocation(ctx context.Context, id types.InvocationID) (*model.InvocationRecord, error) {
	if id == "" {
		return nil, goerr.New("invocation ID is empty")
	}

	doc, err := f.client.Collection(invocationsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("invocation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get invocation record", goerr.V("id", id))
	}

	var record model.InvocationRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode invocation record", goerr.V("id", id))
	}
	return &record, nil
}

// ListInvocations returns records ordered newest first, up to limit
func (f *Firestore) ListInvocations(ctx context.Context, limit int) ([]*model.InvocationRecord, error) {
	query := f.client.Collection(invocationsCollection).
		OrderBy(fieldStartedAt, firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []*model.InvocationRecord
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate invocation records")
		}

		var record model.InvocationRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode invocation record")
		}
		records = append(records, &record)
	}

	return records, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
