package misc

import (
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BindingPathID parses the ":id" path parameter. Ids must be positive integers.
func BindingPathID(c *gin.Context) (types.ID, error) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil || id == 0 {
		return 0, errors.New("invalid id '" + c.Param("id") + "'")
	}
	return id, nil
}
