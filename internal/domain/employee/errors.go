package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeCodeExists      = errors.New("employee code already exists")
	ErrEmailExists             = errors.New("email already registered")
	ErrManagerNotFound         = errors.New("manager not found")
	ErrManagerInactive         = errors.New("manager is deactivated")
	ErrSelfManager             = errors.New("employee cannot be their own manager")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
)
