package store

import (
	"context"
	"fmt"

	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

var (
	insertPet = buildInsert("pet", []string{
		"person_id", "name", "species", "breed", "age", "sex", "feeding", "care", "notes", "photo_path",
		"created_at", "updated_at",
	})
	updatePet = buildUpdate("pet", []string{
		"name", "species", "breed", "age", "sex", "feeding", "care", "notes", "photo_path",
	})

	insertChild = buildInsert("child", []string{
		"person_id", "name", "birth_day", "birth_month", "birth_year", "sex", "notes",
		"created_at", "updated_at",
	})
	updateChild = buildUpdate("child", []string{
		"name", "birth_day", "birth_month", "birth_year", "sex", "notes",
	})

	insertNote = buildInsert("note", []string{"person_id", "body", "created_at", "updated_at"})
	updateNote = buildUpdate("note", []string{"body"})
)

// insertOwned runs an insert statement for an entity that belongs to a person and returns the
// new id. A missing owner is reported as ErrNotFound.
func (s *Store) insertOwned(ctx context.Context, personId int64, stmt string, arg interface{}) (int64, error) {
	if _, err := s.GetPerson(ctx, personId); err != nil {
		return 0, err
	}
	result, err := s.db.NamedExecContext(ctx, stmt, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// deleteById deletes one row and reports ErrNotFound if there was none.
func (s *Store) deleteById(ctx context.Context, table string, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", table, id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", table, id, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePet inserts a pet for an existing person.
func (s *Store) CreatePet(ctx context.Context, pet *model.Pet) error {
	now := s.now()
	pet.CreatedAt, pet.UpdatedAt = now, now
	id, err := s.insertOwned(ctx, pet.PersonId, insertPet, pet)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	pet.Id = id
	return nil
}

// GetPet returns the pet with the given id or ErrNotFound.
func (s *Store) GetPet(ctx context.Context, id int64) (*model.Pet, error) {
	var pet model.Pet
	if err := s.db.GetContext(ctx, &pet, "SELECT * FROM pet WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &pet, nil
}

// UpdatePet overwrites all editable fields of the pet.
func (s *Store) UpdatePet(ctx context.Context, pet *model.Pet) error {
	if _, err := s.db.NamedExecContext(ctx, updatePet, pet); err != nil {
		return fmt.Errorf("failed to update pet %d: %w", pet.Id, err)
	}
	return nil
}

// DeletePet deletes the pet. Removing its photo is up to the caller.
func (s *Store) DeletePet(ctx context.Context, id int64) error {
	return s.deleteById(ctx, "pet", id)
}

// CreateChild inserts a child for an existing person.
func (s *Store) CreateChild(ctx context.Context, child *model.Child) error {
	now := s.now()
	child.CreatedAt, child.UpdatedAt = now, now
	id, err := s.insertOwned(ctx, child.PersonId, insertChild, child)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	child.Id = id
	return nil
}

// GetChild returns the child with the given id or ErrNotFound.
func (s *Store) GetChild(ctx context.Context, id int64) (*model.Child, error) {
	var child model.Child
	if err := s.db.GetContext(ctx, &child, "SELECT * FROM child WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &child, nil
}

// UpdateChild overwrites all editable fields of the child.
func (s *Store) UpdateChild(ctx context.Context, child *model.Child) error {
	if _, err := s.db.NamedExecContext(ctx, updateChild, child); err != nil {
		return fmt.Errorf("failed to update child %d: %w", child.Id, err)
	}
	return nil
}

func (s *Store) DeleteChild(ctx context.Context, id int64) error {
	return s.deleteById(ctx, "child", id)
}

// CreateNote inserts a note for an existing person.
func (s *Store) CreateNote(ctx context.Context, note *model.Note) error {
	now := s.now()
	note.CreatedAt, note.UpdatedAt = now, now
	id, err := s.insertOwned(ctx, note.PersonId, insertNote, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	note.Id = id
	return nil
}

// GetNote returns the note with the given id or ErrNotFound.
func (s *Store) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	var note model.Note
	if err := s.db.GetContext(ctx, &note, "SELECT * FROM note WHERE id = ?", id); err != nil {
		return nil, notFound(err)
	}
	return &note, nil
}

func (s *Store) UpdateNote(ctx context.Context, note *model.Note) error {
	if _, err := s.db.NamedExecContext(ctx, updateNote, note); err != nil {
		return fmt.Errorf("failed to update note %d: %w", note.Id, err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	return s.deleteById(ctx, "note", id)
}
