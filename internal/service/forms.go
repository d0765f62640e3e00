package service

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

// formError describes a submitted form value that cannot be accepted. It is answered with BAD
// REQUEST.
type formError struct {
	field   string
	message string
}

func (e *formError) Error() string {
	return e.field + ": " + e.message
}

// formString returns the trimmed value of a form field, or nil if it is missing or empty.
func formString(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil
	}
	return &v
}

// formUsername is formString for social network handles; leading '@' characters are removed.
func formUsername(c *gin.Context, key string) *string {
	v := strings.TrimLeft(strings.TrimSpace(c.PostForm(key)), "@")
	if v == "" {
		return nil
	}
	return &v
}

// formInt parses an optional integer field. Empty and 0 both mean "unknown".
func formInt(c *gin.Context, key string) (*int, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, &formError{field: key, message: "not a number"}
	}
	if i == 0 {
		return nil, nil
	}
	return &i, nil
}

// formIntRange is formInt with an inclusive range check.
func formIntRange(c *gin.Context, key string, min int, max int) (*int, error) {
	i, err := formInt(c, key)
	if err != nil || i == nil {
		return i, err
	}
	if *i < min || *i > max {
		return nil, &formError{field: key, message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return i, nil
}

// formSmokes is true for "1" and false for any other submitted value. A form without the field
// leaves the answer unknown.
func formSmokes(c *gin.Context) *bool {
	v, ok := c.GetPostForm("smokes")
	if !ok {
		return nil
	}
	smokes := v == "1"
	return &smokes
}

// formRequired returns the trimmed value of a field that must not be blank.
func formRequired(c *gin.Context, key string) (string, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return "", &formError{field: key, message: "is required"}
	}
	return v, nil
}

// formBirthday reads the birth_day, birth_month and birth_year fields.
func formBirthday(c *gin.Context) (day *int, month *int, year *int, err error) {
	if day, err = formIntRange(c, "birth_day", 1, 31); err != nil {
		return nil, nil, nil, err
	}
	if month, err = formIntRange(c, "birth_month", 1, 12); err != nil {
		return nil, nil, nil, err
	}
	if year, err = formInt(c, "birth_year"); err != nil {
		return nil, nil, nil, err
	}
	return day, month, year, nil
}

// bindPerson copies all editable person fields from the submitted form. The avatar is handled
// separately because it is only replaced when a new file arrives.
func bindPerson(c *gin.Context, p *model.Person) error {
	day, month, year, err := formBirthday(c)
	if err != nil {
		return err
	}
	p.BirthDay, p.BirthMonth, p.BirthYear = day, month, year

	p.FirstName = formString(c, "first_name")
	p.LastName = formString(c, "last_name")
	p.Phone = formString(c, "phone")
	p.Email = formString(c, "email")
	p.City = formString(c, "city")
	p.Address = formString(c, "address")
	p.Apartment = formString(c, "apartment")

	p.FavoriteMovies = formString(c, "favorite_movies")
	p.FavoriteColor = formString(c, "favorite_color")
	p.FavoriteFlowers = formString(c, "favorite_flowers")
	p.MaritalStatus = formString(c, "marital_status")
	p.PartnerName = formString(c, "partner_name")
	p.Handedness = formString(c, "handedness")
	p.Smokes = formSmokes(c)

	p.FoodPrefs = formString(c, "food_prefs")
	p.AlcoholPrefs = formString(c, "alcohol_prefs")
	p.PlacesToGo = formString(c, "places_to_go")
	p.TraitsPositive = formString(c, "traits_positive")
	p.TraitsNegative = formString(c, "traits_negative")
	p.Workplace = formString(c, "workplace")
	p.JobTitle = formString(c, "job_title")
	p.Wishlist = formString(c, "wishlist")

	p.TelegramUsername = formUsername(c, "telegram_username")
	p.InstagramUsername = formUsername(c, "instagram_username")
	p.VkUsername = formUsername(c, "vk_username")
	return nil
}

// bindPet copies the pet fields except the photo from the submitted form.
func bindPet(c *gin.Context, pet *model.Pet) error {
	name, err := formRequired(c, "name")
	if err != nil {
		return err
	}
	species, err := formRequired(c, "species")
	if err != nil {
		return err
	}
	pet.Name = name
	pet.Species = species
	pet.Breed = formString(c, "breed")
	pet.Age = formString(c, "age")
	pet.Sex = formString(c, "sex")
	pet.Feeding = formString(c, "feeding")
	pet.Care = formString(c, "care")
	pet.Notes = formString(c, "notes")
	return nil
}

func bindChild(c *gin.Context, child *model.Child) error {
	name, err := formRequired(c, "name")
	if err != nil {
		return err
	}
	day, month, year, err := formBirthday(c)
	if err != nil {
		return err
	}
	child.Name = name
	child.BirthDay, child.BirthMonth, child.BirthYear = day, month, year
	child.Sex = formString(c, "sex")
	child.Notes = formString(c, "notes")
	return nil
}

func bindNote(c *gin.Context, note *model.Note) error {
	body, err := formRequired(c, "body")
	if err != nil {
		return err
	}
	note.Body = body
	return nil
}

// badForm answers a failed form binding: BAD REQUEST for a formError, INTERNAL SERVER ERROR for
// anything else.
func (s *Service) badForm(c *gin.Context, err error) {
	var fe *formError
	if errors.As(err, &fe) {
		c.String(http.StatusBadRequest, "Invalid form value "+fe.Error())
		return
	}
	s.internalError(c, err)
}

// saveUpload stores the file of a multipart field in the upload directory and returns its
// public path. It returns nil if the request carries no file for the field.
func (s *Service) saveUpload(c *gin.Context, field string) (*string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	if header.Filename == "" {
		return nil, nil
	}
	fsPath, publicPath := s.uploads.NewFile(header.Filename)
	if err := c.SaveUploadedFile(header, fsPath); err != nil {
		return nil, fmt.Errorf("failed to save upload %s: %w", field, err)
	}
	return &publicPath, nil
}
