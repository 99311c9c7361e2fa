package register

import "fmt"

type ErrProviderNotFound struct {
	Provider string
}

func (e ErrProviderNotFound) Error() string {
	return fmt.Sprintf("register: provider (%v) not defined", e.Provider)
}

type ErrProviderTypeRequired struct {
	Provider string
}

func (e ErrProviderTypeRequired) Error() string {
	return fmt.Sprintf("register: provider (%v) is missing a type", e.Provider)
}

type ErrProviderNameRequired struct {
	Pos int
}

func (e ErrProviderNameRequired) Error() string {
	return fmt.Sprintf("register: provider at position %v is missing a name", e.Pos)
}

type ErrProviderAlreadyRegistered struct {
	Provider string
}

func (e ErrProviderAlreadyRegistered) Error() string {
	return fmt.Sprintf("register: provider (%v) already registered", e.Provider)
}
