// Package campus lists the named campus blocks and their map anchors.
package campus

import (
	"strings"

	"campus_care_backend/internal/common"

	"github.com/gin-gonic/gin"
)

// Block is a named building with its position on the campus map.
type Block struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

var blocks = []Block{
	{Name: "A Block", X: 490, Y: 500},
	{Name: "G Block", X: 650, Y: 400},
	{Name: "F Block", X: 750, Y: 420},
	{Name: "CSE Block", X: 300, Y: 520},
	{Name: "C Block", X: 520, Y: 420},
	{Name: "Library", X: 400, Y: 460},
	{Name: "Boys hostel", X: 150, Y: 100},
	{Name: "Girls hostel", X: 750, Y: 150},
	{Name: "IT block", X: 510, Y: 360},
}

// Blocks returns a copy of every block in display order.
func Blocks() []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// Lookup finds a block by name, ignoring case and surrounding space.
func Lookup(name string) (Block, bool) {
	name = strings.TrimSpace(name)
	for _, b := range blocks {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Block{}, false
}

// RegisterRoutes serves GET /blocks.
func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/blocks", func(c *gin.Context) {
		common.RespondOK(c, "Campus blocks retrieved successfully.", Blocks())
	})
}
