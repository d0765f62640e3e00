package service

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
)

// allowedOrderby maps the allowed values for the 'orderby' URL parameter to the store's order
// columns.
var allowedOrderby = map[string]string{
	"id":        "id",
	"firstname": "first_name",
	"lastname":  "last_name",
	"phone":     "phone",
	"birthday":  "birthday",
	"created":   "created_at",
}

// allowedAscending are the allowed values for the 'ascending' URL parameter.
var allowedAscending = []string{"true", "false"}

// findPeople responds with a list of people as JSON.
//
// The URL parameters 'firstname' and 'lastname' are interpreted as the beginning of the first name
// or last name of the person.
//
// The URL parameter 'birthday' consists of a month part and a day part, separated by '-'. The call
// returns all people that have their birthday on this month and day, regardless of the year.
//
// The URL parameter 'limit' specifies how many people matching the search criteria are returned.
// The URL parameter 'offset' specifies how many items from the sorted list of results are skipped
// in the beginning. Together with the 'limit' parameter, one can implement search result paging.
//
// The URL parameter 'orderby' specifies the property by which the results shall be sorted. Valid
// values are 'id', 'firstname', 'lastname', 'phone', 'birthday' and 'created'. If this URL
// parameter is not specified, the people will be sorted by id.
//
// If the URL parameter 'ascending' is set to 'false' then the sort order is reversed. An empty
// result is answered with an empty list.
//
// REST API calls:
//
//	> curl "http://localhost:8080/api/people"
//	> curl "http://localhost:8080/api/people?firstname=Ji"
//	> curl "http://localhost:8080/api/people?birthday=11-29"
//	> curl "http://localhost:8080/api/people?limit=20&offset=60"
//	> curl "http://localhost:8080/api/people?orderby=birthday&ascending=false"
func (s *Service) findPeople(c *gin.Context) {
	var q store.PeopleQuery
	if !parseNameAndBirthday(c, &q) || !parseLimitAndOffset(c, &q) || !parseOrderbyAndAscending(c, &q) {
		return
	}
	people, err := s.store.FindPeople(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, people)
}

// parseNameAndBirthday inspects the URL parameters and determines values for first name, last
// name, day and month of the person's birthday.
func parseNameAndBirthday(c *gin.Context, q *store.PeopleQuery) bool {
	q.FirstName = c.Query("firstname")
	q.LastName = c.Query("lastname")
	birthday := c.Query("birthday")
	if birthday == "" {
		return true
	}
	before, after, found := strings.Cut(birthday, "-")
	month, errMonth := strconv.Atoi(before)
	day, errDay := strconv.Atoi(after)
	if !found || errMonth != nil || errDay != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid birthday URL parameter"})
		return false
	}
	q.BirthMonth = month
	q.BirthDay = day
	return true
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set. Without a limit all matching people are returned.
func parseLimitAndOffset(c *gin.Context, q *store.PeopleQuery) bool {
	if limit := c.Query("limit"); limit != "" {
		limitAsInt, errConv := strconv.Atoi(limit)
		if errConv != nil || limitAsInt < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return false
		}
		q.Limit = limitAsInt
	}
	if offset := c.Query("offset"); offset != "" {
		offsetAsInt, errConv := strconv.Atoi(offset)
		if errConv != nil || offsetAsInt < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return false
		}
		q.Offset = offsetAsInt
	}
	return true
}

// parseOrderbyAndAscending inspects the URL parameters and determines the sort column and the
// sort direction of the result set.
func parseOrderbyAndAscending(c *gin.Context, q *store.PeopleQuery) bool {
	orderby := c.Query("orderby")
	if orderby == "" {
		orderby = "id"
	}
	column, ok := allowedOrderby[orderby]
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid orderby parameter"})
		return false
	}
	ascending := c.Query("ascending")
	if ascending == "" {
		ascending = "true"
	}
	if !contains(allowedAscending, ascending) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid ascending parameter"})
		return false
	}
	q.OrderBy = column
	q.Descending = ascending == "false"
	return true
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}

// findPersonByID locates the person whose ID value matches the id parameter of the request URL,
// then returns that person with pets, children and notes as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/people/56
func (s *Service) findPersonByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}
	detail, err := s.store.GetPersonDetail(c.Request.Context(), id)
	if isNotFound(err) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, detail)
}
