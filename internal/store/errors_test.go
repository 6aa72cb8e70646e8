package store

import (
	"context"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		err  error
		want error
	}{
		"nil":               {nil, nil},
		"deadline exceeded": {context.DeadlineExceeded, ErrTemporary},
		"canceled":          {context.Canceled, ErrTemporary},
		"unique violation":  {&pgconn.PgError{Code: "23505"}, ErrAlreadyExists},
		"other pg error":    {&pgconn.PgError{Code: "42P01"}, ErrFatal},
		"no rows":           {pgx.ErrNoRows, ErrNotFound},
		"unknown":           {io.ErrUnexpectedEOF, ErrFatal},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := classify(tc.err)
			if tc.want == nil {
				require.NoError(t, got)
				return
			}
			require.ErrorIs(t, got, tc.want)
		})
	}
}
