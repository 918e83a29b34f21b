package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

var periodRowColumns = []string{"id", "group_id", "name", "type", "start_date", "end_date", "school_year", "created_at", "updated_at"}

func TestVacationRepositoryListGroupsCountsCounties(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT g.id, .* COUNT\(c.id\) AS county_count FROM vacation_groups g LEFT JOIN counties c`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "created_at", "updated_at", "county_count"}).
			AddRow("g1", "Grupa A", "#1E40AF", now, now, 14).
			AddRow("g2", "Grupa B", "#60A5FA", now, now, 0))

	groups, err := repo.ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Grupa A", groups[0].Name)
	assert.Equal(t, 14, groups[0].CountyCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVacationRepositoryListPeriodsByGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	start := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM vacation_periods WHERE group_id = \$1 AND school_year = \$2 ORDER BY start_date ASC`).
		WithArgs("g1", "2025-2026").
		WillReturnRows(sqlmock.NewRows(periodRowColumns).
			AddRow("p1", "g1", "Vacanța intersemestrială", "INTERSEMESTER", start, start.AddDate(0, 0, 6), "2025-2026", start, start))
	mock.ExpectQuery(`FROM vacation_periods WHERE group_id = \$1 ORDER BY start_date ASC`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(periodRowColumns))

	periods, err := repo.ListPeriodsByGroup(context.Background(), "g1", "2025-2026")
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, models.VacationIntersemester, periods[0].Type)

	periods, err = repo.ListPeriodsByGroup(context.Background(), "g1", "")
	require.NoError(t, err)
	assert.Empty(t, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVacationRepositoryWrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	mock.ExpectExec("INSERT INTO vacation_periods").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE vacation_periods SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM vacation_periods WHERE group_id = \$1 AND school_year = \$2`).
		WithArgs("g1", "2025-2026").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("INSERT INTO vacation_groups .* ON CONFLICT \\(name\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("g-existing"))

	period := &models.VacationPeriod{GroupID: "g1", Name: "Vacanța de vară", Type: models.VacationSummer, SchoolYear: "2025-2026"}
	require.NoError(t, repo.CreatePeriod(context.Background(), period))
	assert.NotEmpty(t, period.ID)

	assert.ErrorIs(t, repo.UpdatePeriod(context.Background(), &models.VacationPeriod{ID: "gone"}), sql.ErrNoRows)
	require.NoError(t, repo.DeletePeriodsByYear(context.Background(), "g1", "2025-2026"))

	group := &models.VacationGroup{Name: "Grupa A", Color: "#1E40AF"}
	require.NoError(t, repo.UpsertGroup(context.Background(), group))
	assert.Equal(t, "g-existing", group.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
