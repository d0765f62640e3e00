package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/dirk.krummacker/people-notebook/internal/config"
	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
	"gitlab.com/dirk.krummacker/people-notebook/internal/uploads"
)

// notebook bundles a service on a fresh SQLite database with the router serving it.
type notebook struct {
	store   *store.Store
	uploads *uploads.Dir
	router  *gin.Engine
}

func createNotebook(t *testing.T) *notebook {
	dir := t.TempDir()
	st, err := store.Open(&config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(dir, "people.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	up, err := uploads.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	s, err := New(st, up, zaptest.NewLogger(t), time.UTC)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC) }
	gin.SetMode(gin.ReleaseMode)
	return &notebook{store: st, uploads: up, router: s.SetupHttpRouter(true)}
}

func (n *notebook) get(path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("GET", path, nil)
	n.router.ServeHTTP(recorder, request)
	return recorder
}

// postForm submits an url-encoded form.
func (n *notebook) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	n.router.ServeHTTP(recorder, request)
	return recorder
}

// postMultipart submits a multipart form with one file.
func (n *notebook) postMultipart(t *testing.T, path string, form url.Values, field string, filename string, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			require.NoError(t, writer.WriteField(key, v))
		}
	}
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("POST", path, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	n.router.ServeHTTP(recorder, request)
	return recorder
}

// file returns the filesystem path of an uploaded file.
func (n *notebook) file(publicPath *string) string {
	if publicPath == nil {
		return ""
	}
	return filepath.Join(n.uploads.Root(), strings.TrimPrefix(*publicPath, uploads.URLPrefix))
}

func TestPersonLifecycle(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()

	recorder := n.get("/")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
	assert.Contains(t, recorder.Body.String(), "Пока никого нет")

	recorder = n.get("/person/new")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `action="/person/create"`)

	recorder = n.postForm("/person/create", url.Values{
		"first_name":        {"Anna"},
		"last_name":         {"Ivanova"},
		"phone":             {""},
		"birth_day":         {"15"},
		"birth_month":       {"3"},
		"birth_year":        {"1990"},
		"city":              {"Metropolis"},
		"address":           {"1 Main St"},
		"apartment":         {"4B"},
		"smokes":            {"0"},
		"telegram_username": {"@anna"},
	})
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))

	p, err := n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p.Phone)
	assert.Equal(t, "anna", *p.TelegramUsername)
	require.NotNil(t, p.Smokes)
	assert.False(t, *p.Smokes)

	recorder = n.get("/person/1")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
	body := recorder.Body.String()
	assert.Contains(t, body, "Anna Ivanova")
	assert.Contains(t, body, "15.03.1990 (36 лет)")
	assert.Contains(t, body, "Metropolis, 1 Main St, кв. 4B")
	assert.Contains(t, body, "https://yandex.ru/maps/?text=")
	assert.Contains(t, body, "https://t.me/anna")

	recorder = n.get("/")
	assert.Contains(t, recorder.Body.String(), `<a href="/person/1">Anna Ivanova</a>`)

	recorder = n.get("/person/1/edit")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `value="Ivanova"`)
	assert.Contains(t, recorder.Body.String(), `action="/person/1/update"`)

	// an update replaces all editable fields, missing ones become unknown
	recorder = n.postForm("/person/1/update", url.Values{"first_name": {"Anne"}, "birth_day": {"0"}})
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))
	p, err = n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Anne", *p.FirstName)
	assert.Nil(t, p.LastName)
	assert.Nil(t, p.BirthDay)
	assert.Nil(t, p.Smokes)
	assert.Nil(t, p.TelegramUsername)

	recorder = n.postForm("/person/1/delete", nil)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
	assert.Equal(t, http.StatusNotFound, n.get("/person/1").Code)
}

func TestPersonFormValidation(t *testing.T) {
	n := createNotebook(t)
	for _, form := range []url.Values{
		{"birth_day": {"abc"}},
		{"birth_month": {"13"}},
		{"birth_day": {"-1"}},
		{"birth_year": {"19x0"}},
	} {
		recorder := n.postForm("/person/create", form)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, form.Encode())
	}
	people, err := n.store.ListPeople(context.Background())
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestPersonNotFound(t *testing.T) {
	n := createNotebook(t)

	assert.Equal(t, http.StatusNotFound, n.get("/person/999").Code)
	assert.Equal(t, http.StatusNotFound, n.get("/person/abc").Code)
	assert.Equal(t, http.StatusNotFound, n.get("/person/999/edit").Code)
	assert.Equal(t, http.StatusNotFound, n.postForm("/person/999/update", url.Values{"first_name": {"X"}}).Code)

	recorder := n.postForm("/person/999/delete", nil)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
}

func TestAvatarUpload(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()

	recorder := n.postMultipart(t, "/person/create", url.Values{"first_name": {"Anna"}}, "avatar", "Me.JPG", "first")
	require.Equal(t, http.StatusFound, recorder.Code)
	p, err := n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p.AvatarPath)
	assert.True(t, strings.HasPrefix(*p.AvatarPath, "/uploads/"))
	assert.True(t, strings.HasSuffix(*p.AvatarPath, ".jpg"))
	first := n.file(p.AvatarPath)
	assert.FileExists(t, first)

	// the file is served below /uploads/
	recorder = n.get(*p.AvatarPath)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "first", recorder.Body.String())

	// an update without a file keeps the avatar
	recorder = n.postForm("/person/1/update", url.Values{"first_name": {"Anna"}})
	require.Equal(t, http.StatusFound, recorder.Code)
	p, err = n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, n.file(p.AvatarPath))

	// a new file replaces the old one
	recorder = n.postMultipart(t, "/person/1/update", url.Values{"first_name": {"Anna"}}, "avatar", "new.png", "second")
	require.Equal(t, http.StatusFound, recorder.Code)
	p, err = n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.NoFileExists(t, first)
	assert.FileExists(t, n.file(p.AvatarPath))
	assert.True(t, strings.HasSuffix(*p.AvatarPath, ".png"))
}

func TestPetHandlers(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()
	require.NoError(t, n.store.CreatePerson(ctx, &model.Person{FirstName: str("Anna")}))

	recorder := n.postForm("/person/999/pets/new", url.Values{"name": {"Rex"}, "species": {"dog"}})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Человек не найден", recorder.Body.String())

	recorder = n.postForm("/person/1/pets/new", url.Values{"name": {"  "}, "species": {"dog"}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	recorder = n.postForm("/person/1/pets/new", url.Values{"name": {"Rex"}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = n.postMultipart(t, "/person/1/pets/new",
		url.Values{"name": {" Rex "}, "species": {"dog"}, "breed": {""}}, "photo", "rex.jpeg", "woof")
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))
	pet, err := n.store.GetPet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rex", pet.Name)
	assert.Nil(t, pet.Breed)
	firstPhoto := n.file(pet.PhotoPath)
	assert.FileExists(t, firstPhoto)

	recorder = n.get("/person/1")
	assert.Contains(t, recorder.Body.String(), "<strong>Rex</strong>")

	recorder = n.postMultipart(t, "/pets/1/edit", url.Values{"name": {"Rex"}, "species": {"dog"}, "care": {"brush"}}, "photo", "rex2.jpg", "woof woof")
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))
	pet, err = n.store.GetPet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "brush", *pet.Care)
	assert.NoFileExists(t, firstPhoto)
	secondPhoto := n.file(pet.PhotoPath)
	assert.FileExists(t, secondPhoto)

	recorder = n.postForm("/pets/999/edit", url.Values{"name": {"Rex"}, "species": {"dog"}})
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))

	recorder = n.postForm("/pets/1/delete", nil)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))
	assert.NoFileExists(t, secondPhoto)
	_, err = n.store.GetPet(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	recorder = n.postForm("/pets/1/delete", nil)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
}

func TestChildHandlers(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()
	require.NoError(t, n.store.CreatePerson(ctx, &model.Person{FirstName: str("Anna")}))

	assert.Equal(t, http.StatusNotFound, n.postForm("/person/999/children/new", url.Values{"name": {"Mia"}}).Code)
	assert.Equal(t, http.StatusBadRequest, n.postForm("/person/1/children/new", url.Values{"name": {""}}).Code)
	assert.Equal(t, http.StatusBadRequest, n.postForm("/person/1/children/new", url.Values{"name": {"Mia"}, "birth_day": {"x"}}).Code)

	recorder := n.postForm("/person/1/children/new", url.Values{"name": {"Mia"}, "birth_day": {"1"}, "birth_month": {"6"}, "birth_year": {"2020"}})
	require.Equal(t, http.StatusFound, recorder.Code)
	recorder = n.postForm("/person/1/children/new", url.Values{"name": {"Leo"}, "birth_year": {"0"}})
	require.Equal(t, http.StatusFound, recorder.Code)

	body := n.get("/person/1").Body.String()
	assert.Contains(t, body, "01.06.2020 (6 лет)")
	assert.Less(t, strings.Index(body, "<strong>Mia</strong>"), strings.Index(body, "<strong>Leo</strong>"))

	recorder = n.postForm("/children/2/edit", url.Values{"name": {"Leon"}, "sex": {"male"}})
	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/person/1", recorder.Header().Get("Location"))
	child, err := n.store.GetChild(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Leon", child.Name)
	assert.Nil(t, child.BirthYear)

	assert.Equal(t, "/", n.postForm("/children/999/edit", url.Values{"name": {"X"}}).Header().Get("Location"))
	assert.Equal(t, "/person/1", n.postForm("/children/2/delete", nil).Header().Get("Location"))
	assert.Equal(t, "/", n.postForm("/children/2/delete", nil).Header().Get("Location"))
}

func TestNoteHandlers(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()
	require.NoError(t, n.store.CreatePerson(ctx, &model.Person{FirstName: str("Anna")}))

	assert.Equal(t, http.StatusNotFound, n.postForm("/person/999/notes/new", url.Values{"body": {"hi"}}).Code)
	assert.Equal(t, http.StatusBadRequest, n.postForm("/person/1/notes/new", url.Values{"body": {" "}}).Code)

	require.Equal(t, http.StatusFound, n.postForm("/person/1/notes/new", url.Values{"body": {"<i>likes tulips</i>"}}).Code)
	body := n.get("/person/1").Body.String()
	assert.Contains(t, body, "&lt;i&gt;likes tulips&lt;/i&gt;")

	recorder := n.postForm("/notes/1/edit", url.Values{"body": {"likes roses"}})
	require.Equal(t, http.StatusFound, recorder.Code)
	note, err := n.store.GetNote(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "likes roses", note.Body)

	assert.Equal(t, "/", n.postForm("/notes/999/edit", url.Values{"body": {"x"}}).Header().Get("Location"))
	assert.Equal(t, "/person/1", n.postForm("/notes/1/delete", nil).Header().Get("Location"))
	_, err = n.store.GetNote(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletePersonRemovesUploads(t *testing.T) {
	n := createNotebook(t)
	ctx := context.Background()

	require.Equal(t, http.StatusFound, n.postMultipart(t, "/person/create", url.Values{"first_name": {"Anna"}}, "avatar", "a.jpg", "a").Code)
	require.Equal(t, http.StatusFound, n.postMultipart(t, "/person/1/pets/new", url.Values{"name": {"Rex"}, "species": {"dog"}}, "photo", "r.jpg", "r").Code)
	p, err := n.store.GetPerson(ctx, 1)
	require.NoError(t, err)
	pet, err := n.store.GetPet(ctx, 1)
	require.NoError(t, err)

	recorder := n.postForm("/person/1/delete", nil)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
	assert.NoFileExists(t, n.file(p.AvatarPath))
	assert.NoFileExists(t, n.file(pet.PhotoPath))

	entries, err := os.ReadDir(n.uploads.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthz(t *testing.T) {
	n := createNotebook(t)
	recorder := n.get("/healthz")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func str(s string) *string { return &s }
