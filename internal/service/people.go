package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

// listPeople renders all people ordered by last name and first name.
func (s *Service) listPeople(c *gin.Context) {
	people, err := s.store.ListPeople(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	today := s.today()
	rows := make([]personView, len(people))
	for i := range people {
		rows[i] = newPersonView(&people[i], today)
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "list.html", gin.H{"People": rows})
}

// newPerson renders the empty person form.
func (s *Service) newPerson(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", gin.H{"Person": &model.Person{}, "IsNew": true})
}

// createPerson stores the submitted person together with an optional avatar upload and
// redirects to the new detail page.
func (s *Service) createPerson(c *gin.Context) {
	var p model.Person
	if err := bindPerson(c, &p); err != nil {
		s.badForm(c, err)
		return
	}
	avatar, err := s.saveUpload(c, "avatar")
	if err != nil {
		s.internalError(c, err)
		return
	}
	p.AvatarPath = avatar
	if err := s.store.CreatePerson(c.Request.Context(), &p); err != nil {
		s.uploads.Remove(avatar)
		s.internalError(c, err)
		return
	}
	s.log.Info("person created", zap.Int64("person_id", p.Id))
	redirect(c, personURL(p.Id))
}

// showPerson renders a person together with their pets, children and notes.
func (s *Service) showPerson(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	detail, err := s.store.GetPersonDetail(c.Request.Context(), id)
	if isNotFound(err) {
		c.String(http.StatusNotFound, "Person not found")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "detail.html", newDetailView(detail, s.today()))
}

// editPerson renders the person form filled with the stored values.
func (s *Service) editPerson(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	p, err := s.store.GetPerson(c.Request.Context(), id)
	if isNotFound(err) {
		c.String(http.StatusNotFound, "Person not found")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "form.html", gin.H{"Person": p, "IsNew": false})
}

// updatePerson overwrites the person with the submitted form. A new avatar replaces the old
// one, whose file is removed; without an upload the avatar stays.
func (s *Service) updatePerson(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	p, err := s.store.GetPerson(c.Request.Context(), id)
	if isNotFound(err) {
		c.String(http.StatusNotFound, "Person not found")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if err := bindPerson(c, p); err != nil {
		s.badForm(c, err)
		return
	}
	avatar, err := s.saveUpload(c, "avatar")
	if err != nil {
		s.internalError(c, err)
		return
	}
	previous := p.AvatarPath
	if avatar != nil {
		p.AvatarPath = avatar
	}
	if err := s.store.UpdatePerson(c.Request.Context(), p); err != nil {
		s.uploads.Remove(avatar)
		s.internalError(c, err)
		return
	}
	if avatar != nil {
		s.uploads.Remove(previous)
	}
	redirect(c, personURL(id))
}

// deletePerson removes the person with everything that belongs to them, including the avatar
// and the pet photos. A person that does not exist is treated as already deleted.
func (s *Service) deletePerson(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	files, err := s.store.DeletePerson(c.Request.Context(), id)
	if isNotFound(err) {
		redirect(c, "/")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.uploads.RemoveAll(files)
	s.log.Info("person deleted", zap.Int64("person_id", id), zap.Int("files", len(files)))
	redirect(c, "/")
}
