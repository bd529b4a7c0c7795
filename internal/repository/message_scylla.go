package repository

import (
	"context"

	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/gocqlx/v2/table"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/reflectutil"
)

type scyllaMessageRepository struct {
	session      gocqlx.Session
	messageTable *table.Table
}

func NewScyllaMessageRepository(session gocqlx.Session) *scyllaMessageRepository {
	return &scyllaMessageRepository{
		session: session,
		messageTable: table.New(table.Metadata{
			Name:    (entity.Message{}).TableName(),
			Columns: reflectutil.GetColumnNames(&entity.Message{}),
			PartKey: []string{"channel_id"},
			SortKey: []string{"created_at", "message_id"},
		}),
	}
}

func (r *scyllaMessageRepository) Create(ctx context.Context, message entity.Message) error {
	stmt, names := r.messageTable.Insert()
	return gocqlx.Session.Query(r.session, stmt, names).BindStruct(message).ExecRelease()
}

func (r *scyllaMessageRepository) ListByChannel(
	ctx context.Context, channelID string,
) ([]entity.Message, error) {
	stmt, names := r.messageTable.Select()

	var messages []entity.Message
	err := gocqlx.Session.Query(r.session, stmt, names).
		BindMap(qb.M{"channel_id": channelID}).
		SelectRelease(&messages)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *scyllaMessageRepository) LastByChannel(
	ctx context.Context, channelID string,
) (*entity.Message, error) {
	stmt, names := qb.Select(r.messageTable.Name()).
		Where(qb.Eq("channel_id")).
		OrderBy("created_at", qb.DESC).
		Limit(1).
		ToCql()

	var messages []entity.Message
	err := gocqlx.Session.Query(r.session, stmt, names).
		BindMap(qb.M{"channel_id": channelID}).
		SelectRelease(&messages)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		return nil, nil
	}

	return &messages[0], nil
}

func (r *scyllaMessageRepository) CountSince(
	ctx context.Context, channelID string, since int64,
) (int64, error) {
	stmt, names := qb.Select(r.messageTable.Name()).
		CountAll().
		Where(qb.Eq("channel_id"), qb.GtOrEq("created_at")).
		ToCql()

	var count int64
	err := gocqlx.Session.Query(r.session, stmt, names).
		BindMap(qb.M{"channel_id": channelID, "created_at": since}).
		GetRelease(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
