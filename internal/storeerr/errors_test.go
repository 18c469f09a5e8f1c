package storeerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstructors_MatchSentinels(t *testing.T) {
	assert.ErrorIs(t, NotFound("words.get", "word %d not found", 3), ErrNotFound)
	assert.ErrorIs(t, Conflict("words.create", "dup"), ErrConflict)
	assert.ErrorIs(t, InvalidArgument("paging", "bad limit"), ErrInvalidArgument)

	err := NotFound("words.get", "word %d not found", 3)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "words.get: word 3 not found", err.Error())
}

func TestMap_PassesClassifiedErrorsThrough(t *testing.T) {
	orig := Conflict("groups.create", "group %q already exists", "Verbs")
	wrapped := fmt.Errorf("tx: %w", orig)

	assert.Same(t, wrapped, Map("outer", wrapped))
	assert.Equal(t, KindConflict, KindOf(Map("outer", wrapped)))
}

func TestMap_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, KindConflict},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, KindNotFound},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, KindConflict},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, KindConflict},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, KindNotFound},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, KindInternal},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, KindNotFound},
		{"postgres other", &pgconn.PgError{Code: "40001"}, KindInternal},
		{"context", context.DeadlineExceeded, KindInternal},
		{"plain", errors.New("disk I/O error"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := Map("op", fmt.Errorf("exec: %w", tt.err))
			assert.Equal(t, tt.want, KindOf(mapped))
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMap_Nil(t *testing.T) {
	assert.NoError(t, Map("op", nil))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.ErrorIs(t, Map("op", errors.New("boom")), ErrInternal)
}
