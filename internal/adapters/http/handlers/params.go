package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
)

// moneyPlaces is the number of decimals money is rendered with.
const moneyPlaces = 2

// EnumResponse renders a lookup-table value: the stable code and its label.
type EnumResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// pathID parses the :id route parameter.
// On failure it writes a 400 response and returns false.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		dto.BadRequest(c, "id must be a positive integer")
		return 0, false
	}

	return uint(id), true
}
