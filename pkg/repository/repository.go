// Package repository holds the explicit data-access functions over GORM. Every
// function returns plain model values; there are no associations or cascades.
package repository

import (
	"errors"
	"math"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// PageRequest is a zero-based page of Size rows ordered by created_at.
type PageRequest struct {
	Page int
	Size int
	Desc bool
}

// Normalize clamps the request to sane bounds, using defSize when Size is unset.
func (p PageRequest) Normalize(defSize int) PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defSize
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

func (p PageRequest) order(column string) string {
	if p.Desc {
		return column + " DESC, id DESC"
	}
	return column + " ASC, id ASC"
}

func (p PageRequest) offset() int { return p.Page * p.Size }

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Size)))
	}
	return Page[T]{Content: content, Page: req.Page, Size: req.Size, TotalElements: total, TotalPages: pages}
}

// MapPage converts the content of p with fn, keeping the paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[U]{Content: out, Page: p.Page, Size: p.Size, TotalElements: p.TotalElements, TotalPages: p.TotalPages}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
