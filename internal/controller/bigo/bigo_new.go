// =================================================================================
// This is auto-generated by GoFrame CLI tool only once. Fill this file as you wish.
// =================================================================================

package bigo

import (
	"github.com/Malowking/bigo/api/bigo"
)

type ControllerV1 struct{}

func NewV1() bigo.IBigoV1 {
	return &ControllerV1{}
}
