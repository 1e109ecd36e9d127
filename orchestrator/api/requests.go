package api

import (
	"github.com/cairo-thws/fedt4t/pkg/errors"
)

type roundReq struct {
	index int
}

func (r *roundReq) validate() error {
	if r.index < 0 {
		return errors.ErrInvalidData
	}

	return nil
}

type listRoundsReq struct {
	offset, limit uint64
}

func (r *listRoundsReq) validate() error {
	return nil
}
