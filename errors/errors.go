package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrValidation  = fmt.Errorf("validation failed")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
