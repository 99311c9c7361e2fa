package config

import "fmt"

type ErrProviderNameDuplicate struct {
	Name string
}

func (e ErrProviderNameDuplicate) Error() string {
	return fmt.Sprintf("config: provider name (%v) is used more than once", e.Name)
}

type ErrLayerIDRequired struct {
	Name string
}

func (e ErrLayerIDRequired) Error() string {
	return fmt.Sprintf("config: layer (%v) is missing an id", e.Name)
}

type ErrLayerIDDuplicate struct {
	ID string
}

func (e ErrLayerIDDuplicate) Error() string {
	return fmt.Sprintf("config: layer id (%v) is used more than once", e.ID)
}

type ErrUnknownProviderReference struct {
	Layer    string
	Provider string
}

func (e ErrUnknownProviderReference) Error() string {
	return fmt.Sprintf("config: layer (%v) references unknown provider (%v)", e.Layer, e.Provider)
}

type ErrInvalidSublayerIndex struct {
	Layer string
	Index string
}

func (e ErrInvalidSublayerIndex) Error() string {
	return fmt.Sprintf("config: layer (%v) sublayer index (%q) is not a non-negative integer in canonical form", e.Layer, e.Index)
}

type ErrSublayerIndexDuplicate struct {
	Layer string
	Index string
}

func (e ErrSublayerIndexDuplicate) Error() string {
	return fmt.Sprintf("config: layer (%v) declares sublayer (%v) more than once", e.Layer, e.Index)
}

type ErrOpacityOutOfRange struct {
	Layer   string
	Index   string
	Opacity float64
}

func (e ErrOpacityOutOfRange) Error() string {
	return fmt.Sprintf("config: layer (%v) sublayer (%v) opacity %v is outside [0,1]", e.Layer, e.Index, e.Opacity)
}
