package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

// personColumns are the columns written by create and update. Timestamps, legacy occupation
// and the reminder markers are handled separately.
var personColumns = []string{
	"first_name", "last_name", "phone", "email", "city", "address", "apartment",
	"birth_day", "birth_month", "birth_year",
	"favorite_movies", "favorite_color", "favorite_flowers",
	"marital_status", "partner_name", "handedness", "smokes",
	"avatar_path",
	"food_prefs", "alcohol_prefs", "places_to_go", "traits_positive", "traits_negative",
	"workplace", "job_title", "wishlist",
	"telegram_username", "instagram_username", "vk_username",
}

// insertPerson and updatePerson are built once from personColumns.
var (
	insertPerson = buildInsert("person", append(append([]string{}, personColumns...), "created_at", "updated_at"))
	updatePerson = buildUpdate("person", personColumns)
)

func buildInsert(table string, columns []string) string {
	params := make([]string, len(columns))
	for i, c := range columns {
		params[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(params, ", "))
}

func buildUpdate(table string, columns []string) string {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = :" + c
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", table, strings.Join(sets, ", "))
}

// AllowedOrderBy are the allowed values for ordering a people query. "birthday" orders by
// month and day of the birthday, ignoring the year.
var AllowedOrderBy = []string{"id", "first_name", "last_name", "phone", "birthday", "created_at"}

// PeopleQuery filters and pages a list of people. Zero values mean "no filter". FirstName and
// LastName are matched as prefixes; BirthMonth and BirthDay select people with that birthday
// regardless of the year.
type PeopleQuery struct {
	FirstName  string
	LastName   string
	BirthMonth int
	BirthDay   int
	Limit      int
	Offset     int
	OrderBy    string
	Descending bool
}

// ListPeople returns all people ordered by last name and first name, ignoring case.
func (s *Store) ListPeople(ctx context.Context) ([]model.Person, error) {
	people := []model.Person{}
	err := s.db.SelectContext(ctx, &people, `
		SELECT * FROM person
		ORDER BY LOWER(COALESCE(last_name, '')), LOWER(COALESCE(first_name, '')), id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// FindPeople returns the people matching the query. The OrderBy value must be one of
// AllowedOrderBy; an empty value orders by id.
func (s *Store) FindPeople(ctx context.Context, q PeopleQuery) ([]model.Person, error) {
	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	if !contains(AllowedOrderBy, orderBy) {
		return nil, fmt.Errorf("invalid order column %q", orderBy)
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	var where []string
	var args []interface{}
	if q.FirstName != "" {
		where = append(where, "first_name LIKE ?")
		args = append(args, q.FirstName+"%")
	}
	if q.LastName != "" {
		where = append(where, "last_name LIKE ?")
		args = append(args, q.LastName+"%")
	}
	if q.BirthMonth != 0 {
		where = append(where, "birth_month = ?")
		args = append(args, q.BirthMonth)
	}
	if q.BirthDay != 0 {
		where = append(where, "birth_day = ?")
		args = append(args, q.BirthDay)
	}

	query := "SELECT * FROM person"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if orderBy == "birthday" {
		query += fmt.Sprintf(" ORDER BY birth_month %[1]s, birth_day %[1]s", direction)
	} else {
		query += fmt.Sprintf(" ORDER BY %s %s", orderBy, direction)
	}
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	} else if q.Offset > 0 {
		// both dialects need a LIMIT before OFFSET
		query += " LIMIT ? OFFSET ?"
		args = append(args, maxInt, q.Offset)
	}

	people := []model.Person{}
	if err := s.db.SelectContext(ctx, &people, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find people: %w", err)
	}
	return people, nil
}

// maxInt is the largest possible int value
const maxInt = int(^uint(0) >> 1)

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}

// GetPerson returns the person with the given id or ErrNotFound.
func (s *Store) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	var p model.Person
	if err := s.db.GetContext(ctx, &p, "SELECT * FROM person WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetPersonDetail returns the person together with their pets ordered by species and name,
// their children ordered by birth date with unknown parts last, and their notes newest first.
func (s *Store) GetPersonDetail(ctx context.Context, id int64) (*model.PersonDetail, error) {
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &model.PersonDetail{
		Person:   *p,
		Pets:     []model.Pet{},
		Children: []model.Child{},
		Notes:    []model.Note{},
	}
	err = s.db.SelectContext(ctx, &detail.Pets, `
		SELECT * FROM pet WHERE person_id = ?
		ORDER BY species, name, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}
	err = s.db.SelectContext(ctx, &detail.Children, `
		SELECT * FROM child WHERE person_id = ?
		ORDER BY COALESCE(birth_year, 9999), COALESCE(birth_month, 12), COALESCE(birth_day, 31), id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	err = s.db.SelectContext(ctx, &detail.Notes, `
		SELECT * FROM note WHERE person_id = ?
		ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return detail, nil
}

// CreatePerson inserts the person and sets its Id and timestamps.
func (s *Store) CreatePerson(ctx context.Context, p *model.Person) error {
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	result, err := s.db.NamedExecContext(ctx, insertPerson, p)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read person id: %w", err)
	}
	p.Id = id
	return nil
}

// UpdatePerson overwrites all editable fields of the person. The reminder markers and the
// timestamps are left untouched.
func (s *Store) UpdatePerson(ctx context.Context, p *model.Person) error {
	if _, err := s.db.NamedExecContext(ctx, updatePerson, p); err != nil {
		return fmt.Errorf("failed to update person %d: %w", p.Id, err)
	}
	return nil
}

// DeletePerson deletes the person together with their pets, children and notes in one
// transaction. It returns the upload paths that belonged to the deleted rows (the avatar and
// the pet photos) so that the caller can remove the files.
func (s *Store) DeletePerson(ctx context.Context, id int64) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var avatar []sql.NullString
	if err := tx.SelectContext(ctx, &avatar, "SELECT avatar_path FROM person WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to load person %d: %w", id, err)
	}
	if len(avatar) == 0 {
		return nil, ErrNotFound
	}
	var photos []sql.NullString
	if err := tx.SelectContext(ctx, &photos, "SELECT photo_path FROM pet WHERE person_id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to load pets of person %d: %w", id, err)
	}

	for _, stmt := range []string{
		"DELETE FROM pet WHERE person_id = ?",
		"DELETE FROM child WHERE person_id = ?",
		"DELETE FROM note WHERE person_id = ?",
		"DELETE FROM person WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return nil, fmt.Errorf("failed to delete person %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deletion of person %d: %w", id, err)
	}

	var files []string
	for _, path := range append(photos, avatar...) {
		if path.Valid && path.String != "" {
			files = append(files, path.String)
		}
	}
	return files, nil
}

// ReminderMark carries the reminder markers a scan has set for one person. A nil marker was
// not touched by the scan and is left as it is in the database.
type ReminderMark struct {
	PersonId     int64
	NotifyYear7d *int
	NotifyYear1d *int
}

// Each marker is written on its own and only ever moves forward, so a concurrent scan in another
// process cannot reset a marker to an older year.
const (
	updateNotify7d = "UPDATE person SET notify_year_7d = ? WHERE id = ? AND (notify_year_7d IS NULL OR notify_year_7d < ?)"
	updateNotify1d = "UPDATE person SET notify_year_1d = ? WHERE id = ? AND (notify_year_1d IS NULL OR notify_year_1d < ?)"
)

// SaveReminderMarks writes the reminder markers of several people in one transaction: either
// all of them are stored or none.
func (s *Store) SaveReminderMarks(ctx context.Context, marks []ReminderMark) error {
	if len(marks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range marks {
		for _, u := range []struct {
			stmt string
			year *int
		}{
			{updateNotify7d, m.NotifyYear7d},
			{updateNotify1d, m.NotifyYear1d},
		} {
			if u.year == nil {
				continue
			}
			if _, err := tx.ExecContext(ctx, u.stmt, *u.year, m.PersonId, *u.year); err != nil {
				return fmt.Errorf("failed to save reminder marks of person %d: %w", m.PersonId, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder marks: %w", err)
	}
	return nil
}
