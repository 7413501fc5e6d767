package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/coursebot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleFixture() models.Schedule {
	return models.Schedule{
		Text:     "Курс проходит дважды в неделю.",
		Days:     "Вт, Чт",
		Time:     "19:30",
		Timezone: "UTC+6",
	}
}

func createUser(t *testing.T, store *Store, id int64, name, city string) {
	t.Helper()
	err := store.Create(context.Background(), &models.User{
		UserID:   id,
		FullName: name,
		City:     city,
		Age:      30,
		Phone:    sql.NullString{String: "+70000000000", Valid: true},
		Telegram: sql.NullString{String: "@user", Valid: true},
	})
	require.NoError(t, err)
}

func TestScheduleRepository_EmptyReturnsNil(t *testing.T) {
	store := NewStore(SetupTestDB(t))

	schedule, err := store.GetActiveSchedule(context.Background())
	require.NoError(t, err)
	assert.Nil(t, schedule)
}

func TestScheduleRepository_UpsertRoundTrip(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	saved, err := store.UpsertSchedule(ctx, scheduleFixture())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	got, err := store.GetActiveSchedule(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *saved, *got)
}

func TestScheduleRepository_UpsertKeepsSingleRow(t *testing.T) {
	db := SetupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	first, err := store.UpsertSchedule(ctx, scheduleFixture())
	require.NoError(t, err)

	updated := scheduleFixture()
	updated.Text = "Новое время"
	updated.Days = "Пн, Ср, Пт"
	updated.Time = "08:00"
	updated.Timezone = "Europe/Moscow"
	second, err := store.UpsertSchedule(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM schedule"))
	assert.Equal(t, 1, count)

	got, err := store.GetActiveSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Пн, Ср, Пт", got.Days)
	assert.Equal(t, "08:00", got.Time)
	assert.Equal(t, "Europe/Moscow", got.Timezone)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	createUser(t, store, 42, "Ivan Petrov", "Moscow")

	user, err := store.GetByID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ivan Petrov", user.FullName)
	assert.Equal(t, 30, user.Age)
	assert.False(t, user.Timezone.Valid, "timezone stays empty until a location is shared")
	assert.False(t, user.RegistrationTime.IsZero())

	missing, err := store.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_ReRegistrationKeepsTimezone(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	createUser(t, store, 1, "Ivan", "Moscow")
	require.NoError(t, store.SetUserTimezone(ctx, 1, "Europe/Moscow"))
	createUser(t, store, 1, "Ivan Ivanov", "Kazan")

	user, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Ivanov", user.FullName)
	assert.Equal(t, "Kazan", user.City)
	assert.Equal(t, sql.NullString{String: "Europe/Moscow", Valid: true}, user.Timezone)
}

func TestUserRepository_Timezones(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	createUser(t, store, 3, "Olga", "Almaty")
	createUser(t, store, 1, "Ivan", "Moscow")
	createUser(t, store, 2, "Maria", "London")

	require.NoError(t, store.SetUserTimezone(ctx, 1, "Europe/Moscow"))
	require.NoError(t, store.SetUserTimezone(ctx, 3, "Asia/Almaty"))

	err := store.SetUserTimezone(ctx, 99, "Europe/Moscow")
	assert.ErrorIs(t, err, ErrUserNotFound)

	zones, err := store.ListUserTimezones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.UserTimezone{
		{UserID: 1, Timezone: sql.NullString{String: "Europe/Moscow", Valid: true}},
		{UserID: 2},
		{UserID: 3, Timezone: sql.NullString{String: "Asia/Almaty", Valid: true}},
	}, zones)
}

func TestUserRepository_Search(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	createUser(t, store, 1, "Ivan Petrov", "Moscow")
	createUser(t, store, 2, "Maria Ivanova", "London")
	createUser(t, store, 3, "Olga Smirnova", "Kazan")
	createUser(t, store, 4, "Иван Иванов", "Москва")
	createUser(t, store, 5, "Мария Петрова", "Санкт-Петербург")

	tests := []struct {
		query string
		want  []int64
	}{
		{query: "ivan", want: []int64{1, 2}},
		{query: "  LONDON ", want: []int64{2}},
		{query: "zan", want: []int64{3}},
		{query: "nobody", want: nil},
		{query: "Иван", want: []int64{4}},
		{query: "иван", want: []int64{4}},
		{query: "москва", want: []int64{4}},
		{query: "ПЕТР", want: []int64{5}},
		{query: "петербург", want: []int64{5}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			users, err := store.Search(ctx, tt.query)
			require.NoError(t, err)

			var ids []int64
			for _, u := range users {
				ids = append(ids, u.UserID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUserRepository_SeedTestUsers(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	inserted, err := store.SeedTestUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)

	inserted, err = store.SeedTestUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	recipients, err := store.ListRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 5)
	assert.Equal(t, models.Recipient{UserID: 101, FullName: "Иван Иванов"}, recipients[0])
	assert.Equal(t, int64(105), recipients[4].UserID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	zones, err := store.ListUserTimezones(ctx)
	require.NoError(t, err)
	for _, z := range zones {
		assert.False(t, z.Timezone.Valid, "seeded user %d follows the fallback zone", z.UserID)
	}
}

func TestDeliveryRepository_ClaimOnce(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	claimed, err := store.ClaimDelivery(ctx, 1, "one_hour_before", "2025-03-04")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.ClaimDelivery(ctx, 1, "one_hour_before", "2025-03-04")
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = store.ClaimDelivery(ctx, 1, "one_day_before", "2025-03-04")
	require.NoError(t, err)
	assert.True(t, claimed, "different kind is a separate delivery")

	require.NoError(t, store.ReleaseDelivery(ctx, 1, "one_hour_before", "2025-03-04"))
	claimed, err = store.ClaimDelivery(ctx, 1, "one_hour_before", "2025-03-04")
	require.NoError(t, err)
	assert.True(t, claimed, "released claim can be taken again")
}

func TestStore_Wipe(t *testing.T) {
	store := NewStore(SetupTestDB(t))
	ctx := context.Background()

	_, err := store.SeedTestUsers(ctx)
	require.NoError(t, err)
	_, err = store.UpsertSchedule(ctx, scheduleFixture())
	require.NoError(t, err)
	_, err = store.ClaimDelivery(ctx, 101, "one_day_before", "2025-03-05")
	require.NoError(t, err)

	require.NoError(t, store.Wipe(ctx))

	schedule, err := store.GetActiveSchedule(ctx)
	require.NoError(t, err)
	assert.Nil(t, schedule)

	users, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	claimed, err := store.ClaimDelivery(ctx, 101, "one_day_before", "2025-03-05")
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NoError(t, store.Ping(ctx))
}
