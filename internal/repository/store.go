package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Users          UserRepository
	Profiles       ProfileRepository
	Priorities     PriorityRepository
	Rules          SLARuleRepository
	Areas          AreaRepository
	Tickets        TicketRepository
	SLACalculation SLACalculationRepository
	History        TicketHistoryRepository
	Comments       TicketCommentRepository
	Attachments    AttachmentRepository
	Notifications  NotificationRepository
	Reports        ReportRepository
	FAQs           FAQRepository
}

// NewRepositories binds all repositories to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:          NewUserRepository(db),
		Profiles:       NewProfileRepository(db),
		Priorities:     NewPriorityRepository(db),
		Rules:          NewSLARuleRepository(db),
		Areas:          NewAreaRepository(db),
		Tickets:        NewTicketRepository(db),
		SLACalculation: NewSLACalculationRepository(db),
		History:        NewTicketHistoryRepository(db),
		Comments:       NewTicketCommentRepository(db),
		Attachments:    NewAttachmentRepository(db),
		Notifications:  NewNotificationRepository(db),
		Reports:        NewReportRepository(db),
		FAQs:           NewFAQRepository(db),
	}
}

// Transactor runs fn against repositories sharing one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

// Store exposes pool-bound repositories plus transactional scopes.
type Store struct {
	Repositories
	pool *pgxpool.Pool
}

// NewStore builds a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Repositories: NewRepositories(pool), pool: pool}
}

// WithinTx implements Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewRepositories(tx))
	})
}
