package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

// personNotFound is the answer when a pet, child or note is added to a missing person.
const personNotFound = "Человек не найден"

// ownerExists answers with NOT FOUND unless the person with the given id exists.
func (s *Service) ownerExists(c *gin.Context, personId int64) bool {
	_, err := s.store.GetPerson(c.Request.Context(), personId)
	if isNotFound(err) {
		c.String(http.StatusNotFound, personNotFound)
		return false
	}
	if err != nil {
		s.internalError(c, err)
		return false
	}
	return true
}

// createPet adds a pet with an optional photo to a person.
func (s *Service) createPet(c *gin.Context) {
	personId, ok := parseId(c)
	if !ok {
		return
	}
	pet := model.Pet{PersonId: personId}
	if err := bindPet(c, &pet); err != nil {
		s.badForm(c, err)
		return
	}
	if !s.ownerExists(c, personId) {
		return
	}
	photo, err := s.saveUpload(c, "photo")
	if err != nil {
		s.internalError(c, err)
		return
	}
	pet.PhotoPath = photo
	if err := s.store.CreatePet(c.Request.Context(), &pet); err != nil {
		s.uploads.Remove(photo)
		if isNotFound(err) {
			c.String(http.StatusNotFound, personNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(personId))
}

// updatePet overwrites the pet with the submitted form; a new photo replaces the old one.
// An unknown pet sends the browser back to the list.
func (s *Service) updatePet(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	pet, err := s.store.GetPet(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := bindPet(c, pet); err != nil {
		s.badForm(c, err)
		return
	}
	photo, err := s.saveUpload(c, "photo")
	if err != nil {
		s.internalError(c, err)
		return
	}
	previous := pet.PhotoPath
	if photo != nil {
		pet.PhotoPath = photo
	}
	if err := s.store.UpdatePet(c.Request.Context(), pet); err != nil {
		s.uploads.Remove(photo)
		s.internalError(c, err)
		return
	}
	if photo != nil {
		s.uploads.Remove(previous)
	}
	redirect(c, personURL(pet.PersonId))
}

// deletePet removes the pet and its photo.
func (s *Service) deletePet(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	pet, err := s.store.GetPet(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := s.store.DeletePet(c.Request.Context(), id); err != nil && !isNotFound(err) {
		s.internalError(c, err)
		return
	}
	s.uploads.Remove(pet.PhotoPath)
	redirect(c, personURL(pet.PersonId))
}

func (s *Service) createChild(c *gin.Context) {
	personId, ok := parseId(c)
	if !ok {
		return
	}
	child := model.Child{PersonId: personId}
	if err := bindChild(c, &child); err != nil {
		s.badForm(c, err)
		return
	}
	if err := s.store.CreateChild(c.Request.Context(), &child); err != nil {
		if isNotFound(err) {
			c.String(http.StatusNotFound, personNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(personId))
}

func (s *Service) updateChild(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	child, err := s.store.GetChild(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := bindChild(c, child); err != nil {
		s.badForm(c, err)
		return
	}
	if err := s.store.UpdateChild(c.Request.Context(), child); err != nil {
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(child.PersonId))
}

func (s *Service) deleteChild(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	child, err := s.store.GetChild(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := s.store.DeleteChild(c.Request.Context(), id); err != nil && !isNotFound(err) {
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(child.PersonId))
}

// createNote adds a note to a person. Notes are shown newest first.
func (s *Service) createNote(c *gin.Context) {
	personId, ok := parseId(c)
	if !ok {
		return
	}
	note := model.Note{PersonId: personId}
	if err := bindNote(c, &note); err != nil {
		s.badForm(c, err)
		return
	}
	if err := s.store.CreateNote(c.Request.Context(), &note); err != nil {
		if isNotFound(err) {
			c.String(http.StatusNotFound, personNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(personId))
}

func (s *Service) updateNote(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	note, err := s.store.GetNote(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := bindNote(c, note); err != nil {
		s.badForm(c, err)
		return
	}
	if err := s.store.UpdateNote(c.Request.Context(), note); err != nil {
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(note.PersonId))
}

func (s *Service) deleteNote(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	note, err := s.store.GetNote(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := s.store.DeleteNote(c.Request.Context(), id); err != nil && !isNotFound(err) {
		s.internalError(c, err)
		return
	}
	redirect(c, personURL(note.PersonId))
}
