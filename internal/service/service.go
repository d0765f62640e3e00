package service

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/people-notebook/internal/birthday"
	"gitlab.com/dirk.krummacker/people-notebook/internal/logging"
	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
	"gitlab.com/dirk.krummacker/people-notebook/internal/uploads"
)

//go:embed templates/*.html
var templatesFS embed.FS

// healthTimeout bounds the database ping of the health endpoint.
const healthTimeout = 2 * time.Second

// Service serves the notebook's HTML views, its form handlers and the JSON read API. All
// dependencies are handed in by the caller; there is no package level state.
type Service struct {
	store     *store.Store
	uploads   *uploads.Dir
	log       *zap.Logger
	location  *time.Location
	now       func() time.Time
	templates *template.Template
}

// New creates the service and parses the embedded templates. loc is the time zone that defines
// "today" when ages are computed.
func New(st *store.Store, up *uploads.Dir, log *zap.Logger, loc *time.Location) (*Service, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		store:    st,
		uploads:  up,
		log:      log.With(zap.String("component", "http")),
		location: loc,
		now:      time.Now,
	}
	tmpl, err := template.New("").Funcs(templateFuncs(loc)).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = tmpl
	return s, nil
}

// SetupHttpRouter initializes the router and registers all endpoints. Mutating endpoints are
// guarded by RequireAuth.
func (s *Service) SetupHttpRouter(requestLogging bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestID())
	if requestLogging {
		router.Use(logging.RequestLogger(s.log))
	} else {
		s.log.Info("turning off HTTP request logging")
	}
	router.SetHTMLTemplate(s.templates)

	router.Static("/uploads", s.uploads.Root())
	router.GET("/healthz", s.health)

	router.GET("/", s.listPeople)
	router.GET("/person/new", s.newPerson)
	router.GET("/person/:id", s.showPerson)
	router.GET("/person/:id/edit", s.editPerson)

	guarded := router.Group("/", RequireAuth())
	guarded.POST("/person/create", s.createPerson)
	guarded.POST("/person/:id/update", s.updatePerson)
	guarded.POST("/person/:id/delete", s.deletePerson)

	guarded.POST("/person/:id/pets/new", s.createPet)
	guarded.POST("/pets/:id/edit", s.updatePet)
	guarded.POST("/pets/:id/delete", s.deletePet)

	guarded.POST("/person/:id/children/new", s.createChild)
	guarded.POST("/children/:id/edit", s.updateChild)
	guarded.POST("/children/:id/delete", s.deleteChild)

	guarded.POST("/person/:id/notes/new", s.createNote)
	guarded.POST("/notes/:id/edit", s.updateNote)
	guarded.POST("/notes/:id/delete", s.deleteNote)

	api := router.Group("/api")
	api.GET("/people", s.findPeople)
	api.GET("/people/:id", s.findPersonByID)
	return router
}

// RequireAuth is the authentication hook for mutating requests. There are no user accounts,
// so every request passes.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// health responds with the liveness of the service and the reachability of the database.
//
//	> curl http://localhost:8080/healthz
func (s *Service) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseId reads the numeric id parameter of the request URL. An id that is not a number
// cannot exist, so it is answered with NOT FOUND.
func parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.String(http.StatusNotFound, "Not Found")
		return 0, false
	}
	return id, true
}

// today returns the current date in the service's time zone.
func (s *Service) today() time.Time {
	return birthday.Today(s.now().In(s.location))
}

// internalError logs err and answers with INTERNAL SERVER ERROR.
func (s *Service) internalError(c *gin.Context, err error) {
	s.log.Error("request failed",
		zap.String(logging.RequestIDKey, c.GetString(logging.RequestIDKey)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	_ = c.Error(err)
	if strings.HasPrefix(c.FullPath(), "/api/") {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// redirect answers a form submission with 302 FOUND.
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func personURL(id int64) string {
	return "/person/" + strconv.FormatInt(id, 10)
}
