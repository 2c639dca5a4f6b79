package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

// ParsePage reads ?page= and ?pageSize= with defaults 1 and 10; page size is capped at 100.
func ParsePage(c *gin.Context) (Page, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return Page{}, ErrInvalidPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || size < 1 || size > 100 {
		return Page{}, ErrInvalidPageSize
	}
	return Page{Page: page, PageSize: size}, nil
}
