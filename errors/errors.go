package errors

import "fmt"

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrRoomNotFound = fmt.Errorf("room not found")
	ErrEmptyWords   = fmt.Errorf("no words have been found")
)
