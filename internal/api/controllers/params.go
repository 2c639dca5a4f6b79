package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stepwise/pkg/utils"
)

// uuidParam parses a path parameter, answering 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": name}, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		utils.RespondErrorData(c, http.StatusBadRequest, gin.H{"field": name}, "Invalid "+name)
		return 0, false
	}
	return n, true
}
