package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

// pageFromQuery reads ?page= and ?pageSize=. Bad numbers fall back to the
// defaults.
func pageFromQuery(c *gin.Context) types.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return types.NewPage(number, size)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, &service.FieldError{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func uuidQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, &service.FieldError{Field: name, Message: "must be a UUID"}
	}
	return &id, nil
}

func dateQuery(c *gin.Context, name string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(mealplan.DateLayout, v)
	if err != nil {
		return time.Time{}, &service.FieldError{Field: name, Message: "must be a date in YYYY-MM-DD form"}
	}
	return d, nil
}

func boolQuery(c *gin.Context, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &service.FieldError{Field: name, Message: "must be true or false"}
	}
	return &b, nil
}

// weeksQuery parses a comma separated week list such as "1,2".
func weeksQuery(c *gin.Context, name string) ([]int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	var weeks []int
	for _, part := range strings.Split(v, ",") {
		w, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || w < 1 {
			return nil, &service.FieldError{Field: name, Message: "must be a comma separated list of week numbers"}
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}
