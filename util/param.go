package util

import "fmt"

// Param is the broadcast channel data type
type Param struct {
	Key string
	Val interface{}
}

func (p Param) String() string {
	return fmt.Sprintf("%s: %v", p.Key, p.Val)
}
