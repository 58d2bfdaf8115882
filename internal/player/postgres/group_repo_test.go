// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhaven/duskhaven/pkg/errutil"
)

func TestGroupRepository_SpecialVIP(t *testing.T) {
	tests := []struct {
		name  string
		flags uint64
		want  bool
	}{
		{name: "flag set", flags: FlagSpecialVIP, want: true},
		{name: "flag set among others", flags: FlagSpecialVIP | 0x3, want: true},
		{name: "flag clear", flags: 0x3, want: false},
		{name: "no flags", flags: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT flags FROM groups`).
				WithArgs(uint16(6)).
				WillReturnRows(pgxmock.NewRows([]string{"flags"}).AddRow(tt.flags))

			repo := NewGroupRepository(mock)
			got, err := repo.SpecialVIP(context.Background(), 6)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupRepository_SpecialVIP_UnknownGroup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT flags FROM groups`).
		WithArgs(uint16(99)).
		WillReturnRows(pgxmock.NewRows([]string{"flags"}))

	repo := NewGroupRepository(mock)
	got, err := repo.SpecialVIP(context.Background(), 99)
	require.NoError(t, err, "an unknown group has no capabilities, not an error")
	assert.False(t, got)
}

func TestGroupRepository_SpecialVIP_StoreError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT flags FROM groups`).
		WithArgs(uint16(6)).
		WillReturnError(errors.New("connection reset"))

	repo := NewGroupRepository(mock)
	_, err = repo.SpecialVIP(context.Background(), 6)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "GROUP_LOOKUP_FAILED")
	errutil.AssertErrorContext(t, err, "group_id", uint16(6))
}
