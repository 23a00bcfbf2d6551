package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateOccurrence(ctx context.Context, in OccurrenceRow) error
	CreateOccurrences(ctx context.Context, in []OccurrenceRow) error
	GetOccurrence(ctx context.Context, id string) (OccurrenceRow, error)
	UpdateOccurrence(ctx context.Context, in OccurrenceRow) error
	DeleteOccurrence(ctx context.Context, id string) error
	DeleteOccurrences(ctx context.Context, ids []string) error
	ListOccurrences(ctx context.Context, filter OccurrenceListFilter) ([]OccurrenceRow, error)
	ReplaceAllOccurrences(ctx context.Context, in []OccurrenceRow) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
